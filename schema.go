package tableau

import (
	"github.com/invopop/jsonschema"
)

// JSONSchema describes every accepted color form.
func (Color) JSONSchema() *jsonschema.Schema {
	number := &jsonschema.Schema{Type: "number"}
	return &jsonschema.Schema{
		Description: "A 0xRRGGBB integer, a #rrggbb or #rrggbbaa string, an {r, g, b, a} record or an [r, g, b, a] array with components in [0, 1]",
		OneOf: []*jsonschema.Schema{
			{Type: "integer"},
			{Type: "string", Pattern: "^(#|0[xX])([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$"},
			{Type: "object"},
			{Type: "array", Items: number},
		},
	}
}

// JSONSchema lists the kind names in singular and plural form.
func (Kind) JSONSchema() *jsonschema.Schema {
	names := make([]any, 0, 2*len(kindNames))
	for _, name := range kindNames {
		names = append(names, name, name+"s")
	}
	return &jsonschema.Schema{Type: "string", Enum: names}
}

// Schema returns the JSON Schema of a scene configuration document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(Config))
	schema.Title = "Tableau scene"
	schema.Description = "Sprites, graphics, containers, filters and transitions keyed by identifier"
	return schema
}
