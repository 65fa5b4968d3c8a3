package tools

import "collabboard/internal/object"

// Args is the decoded, typed argument payload of one tool call. The set of
// implementations is closed; there is exactly one per Operation.
type Args interface {
	Operation() Operation
	sealed()
}

// ShapeType selects the geometry createShape produces.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

type CreateStickyNoteArgs struct {
	X      float64  `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"X position of the note's top-left corner"`
	Y      float64  `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Y position of the note's top-left corner"`
	Text   *string  `json:"text,omitempty" jsonschema:"maxLength=5000" jsonschema_description:"Text content of the note"`
	Color  *string  `json:"color,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Fill colour as hex, e.g. #FDE68A (default yellow)"`
	Width  *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Width in pixels (default 200)"`
	Height *float64 `json:"height,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Height in pixels (default 150)"`
}

type CreateShapeArgs struct {
	ShapeType ShapeType `json:"shapeType" jsonschema:"enum=rectangle,enum=circle" jsonschema_description:"Kind of shape to draw"`
	X         float64   `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"X position of the shape's top-left corner"`
	Y         float64   `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Y position of the shape's top-left corner"`
	Color     *string   `json:"color,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Fill colour as hex (default #E5E7EB)"`
	Width     *float64  `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Rectangle width in pixels (default 120)"`
	Height    *float64  `json:"height,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Rectangle height in pixels (default 120)"`
	Radius    *float64  `json:"radius,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Circle radius in pixels (default 60)"`
}

type CreateTextArgs struct {
	X        float64  `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"X position of the text block"`
	Y        float64  `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Y position of the text block"`
	Text     *string  `json:"text,omitempty" jsonschema:"maxLength=5000" jsonschema_description:"The text to display"`
	FontSize *float64 `json:"fontSize,omitempty" jsonschema:"minimum=1,maximum=500" jsonschema_description:"Font size in pixels (default 20)"`
	Color    *string  `json:"color,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Text colour as hex (default #374151)"`
	Width    *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Wrapping width in pixels (default 200)"`
}

type CreateLineArgs struct {
	X           float64  `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"X of the line's start point"`
	Y           float64  `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Y of the line's start point"`
	Width       *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Length of the line in pixels (default 150)"`
	Color       *string  `json:"color,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Stroke colour as hex (default #6B7280)"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" jsonschema:"minimum=0,maximum=1000" jsonschema_description:"Stroke thickness in pixels (default 3)"`
	Rotation    *float64 `json:"rotation,omitempty" jsonschema:"minimum=-360,maximum=360" jsonschema_description:"Rotation in degrees; 0 is horizontal (default 0)"`
}

type CreateFrameArgs struct {
	X      float64  `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"X position of the frame's top-left corner"`
	Y      float64  `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Y position of the frame's top-left corner"`
	Width  *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Width in pixels (default 400)"`
	Height *float64 `json:"height,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Height in pixels (default 300)"`
	Title  *string  `json:"title,omitempty" jsonschema:"maxLength=5000" jsonschema_description:"Label shown on the frame (default Frame)"`
	Color  *string  `json:"color,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Border colour as hex (default #6B7280)"`
}

type CreateConnectorArgs struct {
	FromID      string   `json:"fromId" jsonschema:"minLength=1" jsonschema_description:"ID of an existing object the connector starts at"`
	ToID        string   `json:"toId" jsonschema:"minLength=1" jsonschema_description:"ID of an existing object the connector ends at"`
	StrokeColor *string  `json:"strokeColor,omitempty" jsonschema:"maxLength=50" jsonschema_description:"Line colour as hex (default #6B7280)"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" jsonschema:"minimum=0,maximum=1000" jsonschema_description:"Line thickness in pixels (default 2)"`
	ArrowEnd    *bool    `json:"arrowEnd,omitempty" jsonschema_description:"Draw an arrowhead at the target end (default true)"`
}

type MoveObjectArgs struct {
	ObjectID string  `json:"objectId" jsonschema:"minLength=1" jsonschema_description:"ID of the object to move"`
	X        float64 `json:"x" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"New X position"`
	Y        float64 `json:"y" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"New Y position"`
}

type ResizeObjectArgs struct {
	ObjectID string   `json:"objectId" jsonschema:"minLength=1" jsonschema_description:"ID of the object to resize"`
	Width    *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"New width in pixels"`
	Height   *float64 `json:"height,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"New height in pixels"`
	Radius   *float64 `json:"radius,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"New radius in pixels, for circles"`
}

type UpdateTextArgs struct {
	ObjectID string  `json:"objectId" jsonschema:"minLength=1" jsonschema_description:"ID of the note, text block or frame to edit"`
	Text     *string `json:"text,omitempty" jsonschema:"maxLength=5000" jsonschema_description:"New text content"`
	Title    *string `json:"title,omitempty" jsonschema:"maxLength=5000" jsonschema_description:"New frame title"`
}

type ChangeColorArgs struct {
	ObjectID string `json:"objectId" jsonschema:"minLength=1" jsonschema_description:"ID of the object to recolour"`
	Color    string `json:"color" jsonschema:"maxLength=50" jsonschema_description:"New colour as hex"`
}

type DeleteObjectArgs struct {
	ObjectID string `json:"objectId" jsonschema:"minLength=1" jsonschema_description:"ID of the object to delete"`
}

// Area is the bounding box bulk generation scatters objects into.
type Area struct {
	X      *float64 `json:"x,omitempty" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Left edge (default 0)"`
	Y      *float64 `json:"y,omitempty" jsonschema:"minimum=-1000000,maximum=1000000" jsonschema_description:"Top edge (default 0)"`
	Width  *float64 `json:"width,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Width of the area (default 5000)"`
	Height *float64 `json:"height,omitempty" jsonschema:"minimum=0,maximum=1000000" jsonschema_description:"Height of the area (default 3000)"`
}

type BulkCreateArgs struct {
	Count *int                `json:"count,omitempty" jsonschema:"minimum=1" jsonschema_description:"How many objects to create (default 50)"`
	Types []object.ObjectType `json:"types,omitempty" jsonschema:"enum=stickyNote,enum=rectangle,enum=circle,enum=text,enum=line" jsonschema_description:"Object types to draw from at random (default all five)"`
	Area  *Area               `json:"area,omitempty" jsonschema_description:"Region to scatter the objects in"`
}

type DeleteAllArgs struct{}

func (CreateStickyNoteArgs) Operation() Operation { return OpCreateStickyNote }
func (CreateShapeArgs) Operation() Operation      { return OpCreateShape }
func (CreateTextArgs) Operation() Operation       { return OpCreateText }
func (CreateLineArgs) Operation() Operation       { return OpCreateLine }
func (CreateFrameArgs) Operation() Operation      { return OpCreateFrame }
func (CreateConnectorArgs) Operation() Operation  { return OpCreateConnector }
func (MoveObjectArgs) Operation() Operation       { return OpMoveObject }
func (ResizeObjectArgs) Operation() Operation     { return OpResizeObject }
func (UpdateTextArgs) Operation() Operation       { return OpUpdateText }
func (ChangeColorArgs) Operation() Operation      { return OpChangeColor }
func (DeleteObjectArgs) Operation() Operation     { return OpDeleteObject }
func (BulkCreateArgs) Operation() Operation       { return OpBulkCreate }
func (DeleteAllArgs) Operation() Operation        { return OpDeleteAll }

func (CreateStickyNoteArgs) sealed() {}
func (CreateShapeArgs) sealed()      {}
func (CreateTextArgs) sealed()       {}
func (CreateLineArgs) sealed()       {}
func (CreateFrameArgs) sealed()      {}
func (CreateConnectorArgs) sealed()  {}
func (MoveObjectArgs) sealed()       {}
func (ResizeObjectArgs) sealed()     {}
func (UpdateTextArgs) sealed()       {}
func (ChangeColorArgs) sealed()      {}
func (DeleteObjectArgs) sealed()     {}
func (BulkCreateArgs) sealed()       {}
func (DeleteAllArgs) sealed()        {}

// newArgs returns a zero payload for op, ready to be decoded into.
func newArgs(op Operation) Args {
	switch op {
	case OpCreateStickyNote:
		return &CreateStickyNoteArgs{}
	case OpCreateShape:
		return &CreateShapeArgs{}
	case OpCreateText:
		return &CreateTextArgs{}
	case OpCreateLine:
		return &CreateLineArgs{}
	case OpCreateFrame:
		return &CreateFrameArgs{}
	case OpCreateConnector:
		return &CreateConnectorArgs{}
	case OpMoveObject:
		return &MoveObjectArgs{}
	case OpResizeObject:
		return &ResizeObjectArgs{}
	case OpUpdateText:
		return &UpdateTextArgs{}
	case OpChangeColor:
		return &ChangeColorArgs{}
	case OpDeleteObject:
		return &DeleteObjectArgs{}
	case OpBulkCreate:
		return &BulkCreateArgs{}
	case OpDeleteAll:
		return &DeleteAllArgs{}
	default:
		return nil
	}
}
