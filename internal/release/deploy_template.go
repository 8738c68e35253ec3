// Where: internal/release/deploy_template.go
// What: Typed reader for the generated deployment template artifact.
// Why: Release READMEs list the exact regions and parameters being shipped.
package release

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const templateSchemaURL = "mem://release/deployment-template.schema.json"

//go:embed schema/deployment-template.schema.json
var templateSchemaJSON []byte

var (
	templateSchemaOnce sync.Once
	templateSchema     *jsonschema.Schema
	templateSchemaErr  error
)

// Parameter is one deployment template parameter as shown in the README.
type Parameter struct {
	Label       string
	Description string
}

// DeploymentTemplate is the subset of the template the docs consume.
// Regions and Parameters keep document order.
type DeploymentTemplate struct {
	Regions    []string
	Parameters []Parameter
}

type rawDeploymentTemplate struct {
	Mappings struct {
		RegionMap orderedObject[json.RawMessage] `json:"RegionMap"`
	} `json:"Mappings"`
	Parameters orderedObject[rawParameter] `json:"Parameters"`
}

type rawParameter struct {
	Description string `json:"Description"`
}

// ParseDeploymentTemplate validates and decodes a template document.
// Fields outside the consumed subset are ignored.
func ParseDeploymentTemplate(data []byte) (DeploymentTemplate, error) {
	if err := validateDeploymentTemplate(data); err != nil {
		return DeploymentTemplate{}, err
	}

	var raw rawDeploymentTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return DeploymentTemplate{}, fmt.Errorf("decode deployment template: %w", err)
	}

	out := DeploymentTemplate{
		Regions:    make([]string, 0, len(raw.Mappings.RegionMap)),
		Parameters: make([]Parameter, 0, len(raw.Parameters)),
	}
	for _, region := range raw.Mappings.RegionMap {
		out.Regions = append(out.Regions, region.Key)
	}
	for _, param := range raw.Parameters {
		out.Parameters = append(out.Parameters, Parameter{
			Label:       param.Key,
			Description: param.Value.Description,
		})
	}
	return out, nil
}

func validateDeploymentTemplate(data []byte) error {
	sch, err := loadTemplateSchema()
	if err != nil {
		return err
	}
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("decode deployment template: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("deployment template does not match expected shape: %w", err)
	}
	return nil
}

func loadTemplateSchema() (*jsonschema.Schema, error) {
	templateSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(templateSchemaURL, bytes.NewReader(templateSchemaJSON)); err != nil {
			templateSchemaErr = err
			return
		}
		templateSchema, templateSchemaErr = compiler.Compile(templateSchemaURL)
	})
	return templateSchema, templateSchemaErr
}

type member[T any] struct {
	Key   string
	Value T
}

// orderedObject decodes a JSON object while keeping member order.
type orderedObject[T any] []member[T]

func (o *orderedObject[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	var out orderedObject[T]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value T
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		out = append(out, member[T]{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}
