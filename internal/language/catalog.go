package language

import (
	"fmt"
	"sort"
	"strings"
)

// Spec identifies one language as known to a specific backend.
type Spec struct {
	Name    string   `json:"name" yaml:"name"`
	Native  string   `json:"native,omitempty" yaml:"native,omitempty"`
	Code    string   `json:"code" yaml:"code"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Label renders the combined "<native> (<name>)" form shown in selectors.
func (s Spec) Label() string {
	native := strings.TrimSpace(s.Native)
	if native == "" || native == s.Name {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", native, s.Name)
}

// Supported reports whether the backend has a code for this language.
func (s Spec) Supported() bool {
	return strings.TrimSpace(s.Code) != ""
}

func (s Spec) equal(other Spec) bool {
	return s.Name == other.Name && s.Code == other.Code
}

// Pair is a resolved (source, target) combination. Model carries the backend model
// identifier when the topology defines one per pair.
type Pair struct {
	Source Spec   `json:"source"`
	Target Spec   `json:"target"`
	Model  string `json:"model,omitempty"`
}

func (p Pair) String() string {
	return p.Source.Name + "->" + p.Target.Name
}

// Catalog indexes specs by every name a user may type: display name, native name,
// combined label, aliases and backend code.
type Catalog struct {
	specs []Spec
	index map[string]int
}

// NewCatalog builds a catalog and rejects names that would resolve to two specs.
func NewCatalog(specs []Spec) (*Catalog, error) {
	c := &Catalog{
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)*4),
	}
	for _, spec := range specs {
		spec.Name = strings.TrimSpace(spec.Name)
		spec.Native = strings.TrimSpace(spec.Native)
		spec.Code = NormalizeTag(spec.Code)
		if spec.Name == "" {
			return nil, fmt.Errorf("language name is required")
		}

		pos := len(c.specs)
		c.specs = append(c.specs, spec)

		keys := []string{spec.Name, spec.Native, spec.Label(), spec.Code}
		keys = append(keys, spec.Aliases...)
		for _, raw := range keys {
			key := NormalizeName(raw)
			if key == "" {
				continue
			}
			if existing, ok := c.index[key]; ok && existing != pos {
				return nil, fmt.Errorf("language key %q is ambiguous between %s and %s", raw, c.specs[existing].Name, spec.Name)
			}
			c.index[key] = pos
		}
	}
	return c, nil
}

// Lookup finds a spec by any indexed name.
func (c *Catalog) Lookup(name string) (Spec, bool) {
	if c == nil {
		return Spec{}, false
	}
	pos, ok := c.index[NormalizeName(name)]
	if !ok {
		return Spec{}, false
	}
	return c.specs[pos], true
}

// Specs returns the catalog entries sorted by display name.
func (c *Catalog) Specs() []Spec {
	if c == nil {
		return nil
	}
	out := append([]Spec(nil), c.specs...)
	sortSpecs(out)
	return out
}

func sortSpecs(specs []Spec) {
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})
}
