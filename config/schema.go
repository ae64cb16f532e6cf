package config

import (
	"encoding/json"

	"github.com/grovetools/cyclenext/schema"
	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the JSON Schema of the config file from Config.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown keys are almost always typos of real ones.
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	s := r.Reflect(&Config{})
	s.Title = "cyclenext configuration"
	s.Description = "Schema for cyclenext.yml and cyclenext.toml."
	s.Version = "http://json-schema.org/draft-07/schema#"
	s.ID = ""

	return json.MarshalIndent(s, "", "  ")
}

// NewSchemaValidator compiles the reflected schema into a validator.
func NewSchemaValidator() (*schema.Validator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	return schema.NewValidator(data)
}
