package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for server.toml by reflecting
// over the ServerConfig struct.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// server.toml is closed: unknown keys are almost always typos.
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for a cleaner schema.
		ExpandedStruct: true,
		FieldNameTag:   "json",
	}

	schema := r.Reflect(&ServerConfig{})
	schema.Title = "Packmill Server Configuration"
	schema.Description = "Schema for server.toml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
