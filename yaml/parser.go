package yaml

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	goyaml "github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var definitionSchema []byte

// Schema returns the JSON schema graph definitions are checked against.
func Schema() []byte { return bytes.Clone(definitionSchema) }

// Parser handles parsing YAML graph definitions.
type Parser struct {
	schema *gojsonschema.Schema
}

// NewParser creates a new YAML parser.
func NewParser() *Parser {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(definitionSchema))
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("yaml: invalid embedded schema: %v", err))
	}
	return &Parser{schema: schema}
}

// Parse reads a YAML graph definition, checks it against the definition
// schema and decodes it.
func (p *Parser) Parse(r io.Reader) (*GraphDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty definition", ErrInvalidDefinition)
	}

	jsonData, err := goyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	result, err := p.schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
	}

	var gd GraphDefinition
	if err := goyaml.Unmarshal(data, &gd); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &gd, nil
}

// ParseFile reads and parses a YAML graph definition from a file.
func (p *Parser) ParseFile(filename string) (*GraphDefinition, error) {
	// #nosec G304 - This is a parser that needs to accept arbitrary file paths
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return p.Parse(file)
}

// ParseString parses a YAML graph definition from a string.
func (p *Parser) ParseString(s string) (*GraphDefinition, error) {
	return p.Parse(strings.NewReader(s))
}

// Marshal converts a graph definition to YAML format.
func (p *Parser) Marshal(gd *GraphDefinition) ([]byte, error) {
	return goyaml.Marshal(gd)
}

// MarshalToFile writes a graph definition to a YAML file.
func (p *Parser) MarshalToFile(gd *GraphDefinition, filename string) error {
	data, err := p.Marshal(gd)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0o600)
}
