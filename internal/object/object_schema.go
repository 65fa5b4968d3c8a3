package object

// Validation limit constants
const (
	MaxStringLength = 5000
	MaxIDLength     = 256
	MaxCoordinate   = 1000000
	MinCoordinate   = -1000000
	MaxStrokeWidth  = 1000
	MaxFontSize     = 500
	MaxColorLength  = 50
)

// UpdatableProperties are the fields an update Action may carry.
var UpdatableProperties = map[string]bool{
	"x":      true,
	"y":      true,
	"width":  true,
	"height": true,
	"radius": true,
	"text":   true,
	"title":  true,
	"color":  true,
}

// GetSchemaForType returns an empty schema struct for the properties of a
// created object of the given type, or nil for unknown types.
func GetSchemaForType(objType ObjectType) interface{} {
	switch objType {
	case TypeStickyNote:
		return &StickyNoteData{}
	case TypeRectangle:
		return &RectangleData{}
	case TypeCircle:
		return &CircleData{}
	case TypeText:
		return &TextData{}
	case TypeLine:
		return &LineData{}
	case TypeFrame:
		return &FrameData{}
	case TypeConnector:
		return &ConnectorData{}
	default:
		return nil
	}
}

// =============================================================================
// Common Embedded Structs
// =============================================================================

//  x,y of the object's top-left (or start, for lines)
type Position struct {
	X *float64 `json:"x" validate:"required,min=-1000000,max=1000000"`
	Y *float64 `json:"y" validate:"required,min=-1000000,max=1000000"`
}

//  width and height dimensions
type Size struct {
	Width  *float64 `json:"width" validate:"required,min=0,max=1000000"`
	Height *float64 `json:"height" validate:"required,min=0,max=1000000"`
}

//  fill / stroke colour
type Fill struct {
	Color *string `json:"color" validate:"required,max=50"`
}

//  rotation in degrees
type Transform struct {
	Rotation *float64 `json:"rotation" validate:"required,min=-360,max=360"`
}

// =============================================================================
// Content Types
// =============================================================================

type StickyNoteData struct {
	Position
	Size
	Fill
	Transform
	Text *string `json:"text" validate:"required,max=5000"`
}

type TextData struct {
	Position
	Fill
	Transform
	Width    *float64 `json:"width" validate:"required,min=0,max=1000000"`
	Text     *string  `json:"text" validate:"required,max=5000"`
	FontSize *float64 `json:"fontSize" validate:"required,min=1,max=500"`
}

type FrameData struct {
	Position
	Size
	Fill
	Transform
	Title  *string `json:"title" validate:"required,max=5000"`
	ZIndex *int    `json:"zIndex" validate:"required"`
}

// =============================================================================
// Shape Types
// =============================================================================

type RectangleData struct {
	Position
	Size
	Fill
	Transform
}

type CircleData struct {
	Position
	Fill
	Transform
	Radius *float64 `json:"radius" validate:"required,min=0,max=1000000"`
}

type LineData struct {
	Position
	Fill
	Transform
	Width       *float64 `json:"width" validate:"required,min=0,max=1000000"`
	StrokeWidth *float64 `json:"strokeWidth" validate:"required,min=0,max=1000"`
}

// =============================================================================
// Relational Types
// =============================================================================

type ConnectorData struct {
	FromID      *string  `json:"fromId" validate:"required,min=1,max=256"`
	ToID        *string  `json:"toId" validate:"required,min=1,max=256"`
	StrokeColor *string  `json:"strokeColor" validate:"required,max=50"`
	StrokeWidth *float64 `json:"strokeWidth" validate:"required,min=0,max=1000"`
	ArrowEnd    *bool    `json:"arrowEnd" validate:"required"`
}
