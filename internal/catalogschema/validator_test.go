package catalogschema

import (
	"strings"
	"testing"
)

func TestParseYAML_Valid(t *testing.T) {
	doc, err := ParseYAML([]byte(`
version: 1
languages:
  - name: English
    code: en
  - name: Hindi
    native: हिन्दी
    code: hi
  - name: Odia
    native: ଓଡ଼ିଆ
    code: or
    aliases: [Oriya]
  - name: Bodo
`))
	if err != nil {
		t.Fatalf("expected catalog to be valid, got error: %v", err)
	}
	if len(doc.Languages) != 4 {
		t.Fatalf("unexpected language count: got %d want 4", len(doc.Languages))
	}
	if doc.Languages[2].Aliases[0] != "Oriya" {
		t.Fatalf("unexpected alias: %+v", doc.Languages[2])
	}
	if doc.Languages[3].Code != "" {
		t.Fatalf("expected Bodo to have no service code, got %q", doc.Languages[3].Code)
	}
}

func TestParseYAML_RejectsUnknownField(t *testing.T) {
	_, err := ParseYAML([]byte(`
version: 1
languages:
  - name: English
    code: en
    voice: female
  - name: Hindi
    code: hi
`))
	if err == nil {
		t.Fatalf("expected validation to fail for unknown field")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected schema error, got: %v", err)
	}
}

func TestParseYAML_RejectsWrongVersion(t *testing.T) {
	_, err := ParseYAML([]byte(`{"version": 2, "languages": [{"name": "English"}, {"name": "Hindi"}]}`))
	if err == nil {
		t.Fatalf("expected validation to fail for version 2")
	}
}

func TestParseYAML_RejectsAmbiguousNames(t *testing.T) {
	_, err := ParseYAML([]byte(`
version: 1
languages:
  - name: Odia
    code: or
  - name: Oriya
    code: or
`))
	if err == nil {
		t.Fatalf("expected validation to fail for a code shared by two entries")
	}
	if !strings.Contains(err.Error(), "catalog entries conflict") {
		t.Fatalf("expected conflict error, got: %v", err)
	}
}

func TestParseYAML_RejectsBlankAlias(t *testing.T) {
	_, err := ParseYAML([]byte(`
version: 1
languages:
  - name: English
    code: en
    aliases: ["  "]
  - name: Hindi
    code: hi
`))
	if err == nil {
		t.Fatalf("expected validation to fail for whitespace-only alias")
	}
	if !strings.Contains(err.Error(), "aliases[0] must not be empty") {
		t.Fatalf("expected alias semantic error, got: %v", err)
	}
}

func TestParseYAML_Empty(t *testing.T) {
	if _, err := ParseYAML([]byte("   ")); err == nil {
		t.Fatalf("expected empty catalog to fail")
	}
}
