package catalogschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"horse.fit/vaani/internal/language"
)

//go:embed language_catalog.schema.json
var languageCatalogSchemaJSON string

// Document is the on-disk language catalog format.
type Document struct {
	Version   int             `json:"version" yaml:"version"`
	Languages []language.Spec `json:"languages" yaml:"languages"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ParseYAML decodes a YAML (or JSON, which is valid YAML) catalog, validates it against
// the embedded schema and returns its language entries.
func ParseYAML(raw []byte) (*Document, error) {
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode catalog YAML: %w", err)
	}
	if decoded == nil {
		return nil, fmt.Errorf("catalog is empty")
	}

	asJSON, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("convert catalog to JSON: %w", err)
	}
	return ValidateJSON(asJSON)
}

// ValidateJSON validates a JSON catalog document.
func ValidateJSON(payload json.RawMessage) (*Document, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode catalog JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	if err := validateSemantics(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("language_catalog.schema.json", strings.NewReader(languageCatalogSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("language_catalog.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("catalog is nil")
	}

	for i, spec := range doc.Languages {
		if strings.TrimSpace(spec.Name) == "" {
			return fmt.Errorf("languages[%d].name must not be empty", i)
		}
		for j, alias := range spec.Aliases {
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("languages[%d].aliases[%d] must not be empty", i, j)
			}
		}
	}

	// Ambiguous names, duplicate codes across entries and similar conflicts.
	if _, err := language.NewCatalog(doc.Languages); err != nil {
		return fmt.Errorf("catalog entries conflict: %w", err)
	}
	return nil
}
