package language

import (
	"fmt"
	"strings"

	"horse.fit/vaani/internal/failure"
)

// Topology names the pairing rule a resolver enforces.
type Topology string

const (
	TopologyFixedSource Topology = "fixed_source"
	TopologyPairTable   Topology = "pair_table"
	TopologyCodeMap     Topology = "code_map"
)

// Resolver maps user-facing names to a translatable pair. Implementations are pure
// table lookups and safe for concurrent use.
type Resolver interface {
	Resolve(sourceName, targetName string) (Pair, error)
	Lookup(name string) (Spec, bool)
	Sources() []Spec
	Targets() []Spec
	Topology() Topology
}

// PairRoute is one entry of an explicit pair table.
type PairRoute struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Model  string `json:"model" yaml:"model"`
}

func lookupBoth(c *Catalog, sourceName, targetName string) (Spec, Spec, error) {
	source, ok := c.Lookup(sourceName)
	if !ok {
		return Spec{}, Spec{}, unknownLanguage("source", sourceName)
	}
	target, ok := c.Lookup(targetName)
	if !ok {
		return Spec{}, Spec{}, unknownLanguage("target", targetName)
	}
	if source.equal(target) {
		return Spec{}, Spec{}, failure.Rejectf(failure.SameLanguage, "Please choose different source and target languages.")
	}
	return source, target, nil
}

func unknownLanguage(role, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return failure.Rejectf(failure.UnknownLanguage, "Please select a %s language.", role)
	}
	return failure.Rejectf(failure.UnknownLanguage, "Unknown %s language %q.", role, trimmed)
}

// FixedSourceResolver always translates from one source language into a target table.
type FixedSourceResolver struct {
	source  Spec
	models  map[string]string
	targets []Spec
	all     *Catalog
}

// NewFixedSourceResolver builds a resolver whose source is always source. Each target
// is paired with the model id produced by modelFor.
func NewFixedSourceResolver(source Spec, targets []Spec, modelFor func(source, target Spec) string) (*FixedSourceResolver, error) {
	all, err := NewCatalog(append([]Spec{source}, targets...))
	if err != nil {
		return nil, err
	}
	models := make(map[string]string, len(targets))
	normalizedTargets := make([]Spec, 0, len(targets))
	for _, target := range targets {
		spec, _ := all.Lookup(target.Name)
		if spec.equal(source) {
			return nil, fmt.Errorf("target %s equals the fixed source", target.Name)
		}
		model := ""
		if modelFor != nil {
			model = modelFor(source, spec)
		}
		models[spec.Name] = model
		normalizedTargets = append(normalizedTargets, spec)
	}
	sortSpecs(normalizedTargets)
	fixed, _ := all.Lookup(source.Name)

	return &FixedSourceResolver{
		source:  fixed,
		models:  models,
		targets: normalizedTargets,
		all:     all,
	}, nil
}

// Resolve treats an empty source name as the fixed source.
func (r *FixedSourceResolver) Resolve(sourceName, targetName string) (Pair, error) {
	if strings.TrimSpace(sourceName) == "" {
		sourceName = r.source.Name
	}
	source, target, err := lookupBoth(r.all, sourceName, targetName)
	if err != nil {
		return Pair{}, err
	}
	if !source.equal(r.source) {
		return Pair{}, failure.Rejectf(failure.UnsupportedPair, "Only %s can be translated from; %s is not a supported source.", r.source.Name, source.Name)
	}
	model, ok := r.models[target.Name]
	if !ok {
		return Pair{}, failure.Rejectf(failure.UnsupportedPair, "%s is not a supported target language.", target.Name)
	}
	return Pair{Source: source, Target: target, Model: model}, nil
}

func (r *FixedSourceResolver) Lookup(name string) (Spec, bool) {
	return r.all.Lookup(name)
}

func (r *FixedSourceResolver) Sources() []Spec {
	return []Spec{r.source}
}

func (r *FixedSourceResolver) Targets() []Spec {
	return append([]Spec(nil), r.targets...)
}

func (r *FixedSourceResolver) Topology() Topology {
	return TopologyFixedSource
}

// PairTableResolver accepts only pairs listed in an explicit route table.
type PairTableResolver struct {
	catalog *Catalog
	routes  map[[2]string]string
	sources []Spec
	targets []Spec
}

// NewPairTableResolver indexes routes against the catalog built from languages.
func NewPairTableResolver(languages []Spec, routes []PairRoute) (*PairTableResolver, error) {
	catalog, err := NewCatalog(languages)
	if err != nil {
		return nil, err
	}

	r := &PairTableResolver{
		catalog: catalog,
		routes:  make(map[[2]string]string, len(routes)),
	}
	seenSources := map[string]struct{}{}
	seenTargets := map[string]struct{}{}
	for _, route := range routes {
		source, ok := catalog.Lookup(route.Source)
		if !ok {
			return nil, fmt.Errorf("route source %q is not in the catalog", route.Source)
		}
		target, ok := catalog.Lookup(route.Target)
		if !ok {
			return nil, fmt.Errorf("route target %q is not in the catalog", route.Target)
		}
		if source.equal(target) {
			return nil, fmt.Errorf("route %s->%s pairs a language with itself", source.Name, target.Name)
		}
		model := strings.TrimSpace(route.Model)
		if model == "" {
			return nil, fmt.Errorf("route %s->%s has no model", source.Name, target.Name)
		}
		r.routes[[2]string{source.Name, target.Name}] = model

		if _, ok := seenSources[source.Name]; !ok {
			seenSources[source.Name] = struct{}{}
			r.sources = append(r.sources, source)
		}
		if _, ok := seenTargets[target.Name]; !ok {
			seenTargets[target.Name] = struct{}{}
			r.targets = append(r.targets, target)
		}
	}
	sortSpecs(r.sources)
	sortSpecs(r.targets)
	return r, nil
}

func (r *PairTableResolver) Resolve(sourceName, targetName string) (Pair, error) {
	source, target, err := lookupBoth(r.catalog, sourceName, targetName)
	if err != nil {
		return Pair{}, err
	}
	model, ok := r.routes[[2]string{source.Name, target.Name}]
	if !ok {
		return Pair{}, failure.Rejectf(failure.UnsupportedPair, "Translation model not available for %s to %s.", source.Name, target.Name)
	}
	return Pair{Source: source, Target: target, Model: model}, nil
}

func (r *PairTableResolver) Lookup(name string) (Spec, bool) {
	return r.catalog.Lookup(name)
}

func (r *PairTableResolver) Sources() []Spec {
	return append([]Spec(nil), r.sources...)
}

func (r *PairTableResolver) Targets() []Spec {
	return append([]Spec(nil), r.targets...)
}

func (r *PairTableResolver) Topology() Topology {
	return TopologyPairTable
}

// CodeMapResolver pairs any two catalog languages for a single multi-directional
// service. Whether the service can translate a language is decided by the provider.
type CodeMapResolver struct {
	catalog *Catalog
}

func NewCodeMapResolver(languages []Spec) (*CodeMapResolver, error) {
	catalog, err := NewCatalog(languages)
	if err != nil {
		return nil, err
	}
	return &CodeMapResolver{catalog: catalog}, nil
}

func (r *CodeMapResolver) Resolve(sourceName, targetName string) (Pair, error) {
	source, target, err := lookupBoth(r.catalog, sourceName, targetName)
	if err != nil {
		return Pair{}, err
	}
	if source.Supported() && source.Code == target.Code {
		return Pair{}, failure.Rejectf(failure.SameLanguage, "Please choose different source and target languages.")
	}
	return Pair{Source: source, Target: target}, nil
}

func (r *CodeMapResolver) Lookup(name string) (Spec, bool) {
	return r.catalog.Lookup(name)
}

func (r *CodeMapResolver) Sources() []Spec {
	return r.catalog.Specs()
}

func (r *CodeMapResolver) Targets() []Spec {
	return r.catalog.Specs()
}

func (r *CodeMapResolver) Topology() Topology {
	return TopologyCodeMap
}
