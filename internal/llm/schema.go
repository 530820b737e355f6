package llm

// Schema is the subset of JSON Schema accepted by strict structured
// outputs: every object lists all properties as required and sets
// additionalProperties to false.
type Schema struct {
	Type                 string             `json:"type"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

func String() *Schema  { return &Schema{Type: "string"} }
func Integer() *Schema { return &Schema{Type: "integer"} }

func Array(items *Schema) *Schema {
	return &Schema{Type: "array", Items: items}
}

// Object builds a strict object schema: all properties required,
// additionalProperties false, keys emitted in the given order.
func Object(properties map[string]*Schema, required ...string) *Schema {
	closed := false
	return &Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: &closed,
	}
}
