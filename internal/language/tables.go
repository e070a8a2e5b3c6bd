package language

import "fmt"

// English is the fixed source of the single-direction topology.
var English = Spec{Name: "English", Native: "English", Code: "en"}

// opusModelPrefix names the Helsinki-NLP OPUS-MT family used by the local backend.
const opusModelPrefix = "Helsinki-NLP/opus-mt-"

// OpusModelID returns the OPUS-MT model identifier for a source/target code pair.
func OpusModelID(sourceCode, targetCode string) string {
	return fmt.Sprintf("%s%s-%s", opusModelPrefix, NormalizeCode(sourceCode), NormalizeCode(targetCode))
}

// FixedTargets are the targets of the English-only prototype.
var FixedTargets = []Spec{
	{Name: "Hindi", Native: "हिन्दी", Code: "hi"},
	{Name: "Bengali", Native: "বাংলা", Code: "bn"},
	{Name: "Tamil", Native: "தமிழ்", Code: "ta"},
	{Name: "Malayalam", Native: "മലയാളം", Code: "ml"},
	{Name: "Telugu", Native: "తెలుగు", Code: "te"},
}

// PairLanguages are the Indic languages with OPUS-MT models in both directions with English.
var PairLanguages = []Spec{
	{Name: "Hindi", Native: "हिन्दी", Code: "hi"},
	{Name: "Bengali", Native: "বাংলা", Code: "bn"},
	{Name: "Tamil", Native: "தமிழ்", Code: "ta"},
	{Name: "Telugu", Native: "తెలుగు", Code: "te"},
	{Name: "Malayalam", Native: "മലയാളം", Code: "ml"},
	{Name: "Gujarati", Native: "ગુજરાતી", Code: "gu"},
	{Name: "Marathi", Native: "मराठी", Code: "mr"},
	{Name: "Kannada", Native: "ಕನ್ನಡ", Code: "kn"},
	{Name: "Punjabi", Native: "ਪੰਜਾਬੀ", Code: "pa"},
	{Name: "Oriya", Native: "ଓଡ଼ିଆ", Code: "or", Aliases: []string{"Odia"}},
	{Name: "Urdu", Native: "اردو", Code: "ur"},
	{Name: "Assamese", Native: "অসমীয়া", Code: "as"},
}

// ServiceLanguages lists English plus the 22 scheduled languages of India with the
// codes understood by the remote translation service. An empty code marks a language
// the service does not translate.
var ServiceLanguages = []Spec{
	{Name: "English", Native: "English", Code: "en"},
	{Name: "Assamese", Native: "অসমীয়া", Code: "as"},
	{Name: "Bengali", Native: "বাংলা", Code: "bn"},
	{Name: "Bodo", Native: "बड़ो"},
	{Name: "Dogri", Native: "डोगरी"},
	{Name: "Gujarati", Native: "ગુજરાતી", Code: "gu"},
	{Name: "Hindi", Native: "हिन्दी", Code: "hi"},
	{Name: "Kannada", Native: "ಕನ್ನಡ", Code: "kn"},
	{Name: "Kashmiri", Native: "कॉशुर"},
	{Name: "Konkani", Native: "कोंकणी"},
	{Name: "Maithili", Native: "मैथिली"},
	{Name: "Malayalam", Native: "മലയാളം", Code: "ml"},
	{Name: "Manipuri", Native: "মৈতৈলোন্"},
	{Name: "Marathi", Native: "मराठी", Code: "mr"},
	{Name: "Nepali", Native: "नेपाली", Code: "ne"},
	{Name: "Odia", Native: "ଓଡ଼ିଆ", Code: "or", Aliases: []string{"Oriya"}},
	{Name: "Punjabi", Native: "ਪੰਜਾਬੀ", Code: "pa"},
	{Name: "Sanskrit", Native: "संस्कृतम्", Code: "sa"},
	{Name: "Santali", Native: "ᱥᱟᱱᱛᱟᱲᱤ"},
	{Name: "Sindhi", Native: "سنڌي", Code: "sd"},
	{Name: "Tamil", Native: "தமிழ்", Code: "ta"},
	{Name: "Telugu", Native: "తెలుగు", Code: "te"},
	{Name: "Urdu", Native: "اردو", Code: "ur"},
}

// SpeechCodes are the language codes the synthesis backend can voice.
var SpeechCodes = []string{
	"en", "as", "bn", "gu", "hi", "kn", "ml", "mr",
	"ne", "or", "pa", "sd", "ta", "te", "ur", "sa",
}

// PairTable builds the bidirectional English<->language model table.
func PairTable(languages []Spec) []PairRoute {
	routes := make([]PairRoute, 0, len(languages)*2)
	for _, lang := range languages {
		routes = append(routes,
			PairRoute{Source: English.Name, Target: lang.Name, Model: OpusModelID(English.Code, lang.Code)},
			PairRoute{Source: lang.Name, Target: English.Name, Model: OpusModelID(lang.Code, English.Code)},
		)
	}
	return routes
}
