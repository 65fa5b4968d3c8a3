package tools

import (
	"encoding/json"
	"fmt"
	"reflect"

	invopopSchema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Definition describes one tool the model may call.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

var descriptions = [numOperations]string{
	OpCreateStickyNote: "Create a sticky note on the board.",
	OpCreateShape:      "Create a rectangle or a circle.",
	OpCreateText:       "Create a standalone text element.",
	OpCreateLine:       "Create a straight line starting at (x, y).",
	OpCreateFrame:      "Create a frame, a titled container used to group other objects visually.",
	OpCreateConnector:  "Connect two existing objects with a line or arrow. Both IDs must refer to objects already on the board.",
	OpMoveObject:       "Move an existing object to a new position.",
	OpResizeObject:     "Resize an existing object. Give width and height for rectangular objects or radius for circles.",
	OpUpdateText:       "Change the text of a note or text element, or the title of a frame.",
	OpChangeColor:      "Change the colour of an existing object.",
	OpDeleteObject:     "Delete one object from the board.",
	OpBulkCreate:       "Create many objects at once, scattered at random inside an area. Use this when asked for more than about ten objects.",
	OpDeleteAll:        "Delete every object currently on the board.",
}

type entry struct {
	def    Definition
	schema *jsonschema.Schema
}

// Catalog is the immutable set of tool definitions. It is safe for
// concurrent use.
type Catalog struct {
	entries [numOperations]entry
	defs    []Definition
	raw     []byte
}

// NewCatalog reflects a JSON schema from every operation's args type and
// compiles it for argument validation.
func NewCatalog() (*Catalog, error) {
	reflector := invopopSchema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Anonymous:                 true,
	}

	c := &Catalog{}
	for _, op := range Operations() {
		s := reflector.ReflectFromType(reflect.TypeOf(newArgs(op)))
		s.Version = ""
		if s.Properties == nil {
			s.Properties = invopopSchema.NewProperties()
		}

		params, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", op, err)
		}
		compiled, err := jsonschema.CompileString("", string(params))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", op, err)
		}

		def := Definition{
			Name:        op.String(),
			Description: descriptions[op],
			Parameters:  params,
		}
		c.entries[op] = entry{def: def, schema: compiled}
		c.defs = append(c.defs, def)
	}

	raw, err := json.Marshal(c.defs)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	c.raw = raw

	return c, nil
}

// MustCatalog is NewCatalog for process start; the schemas are derived from
// static types, so a failure is a programming error.
func MustCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Definitions returns a copy of the definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	for i, d := range c.defs {
		d.Parameters = append(json.RawMessage(nil), d.Parameters...)
		out[i] = d
	}
	return out
}

// Definition returns the definition of op.
func (c *Catalog) Definition(op Operation) Definition {
	return c.entries[op].def
}

// JSON returns the serialised catalog. The bytes are identical on every call.
func (c *Catalog) JSON() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)
	return out
}

// Len reports the number of operations.
func (c *Catalog) Len() int {
	return len(c.defs)
}
