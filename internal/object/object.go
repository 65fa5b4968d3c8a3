package object

import (
	"encoding/json"
	"fmt"
)

// ObjectType: kind of item on the board
type ObjectType string

const (
	TypeStickyNote ObjectType = "stickyNote"
	TypeRectangle  ObjectType = "rectangle"
	TypeCircle     ObjectType = "circle"
	TypeLine       ObjectType = "line"
	TypeText       ObjectType = "text"
	TypeFrame      ObjectType = "frame"
	TypeConnector  ObjectType = "connector"
)

// AllowedObjectTypes is the closed set of board object types.
var AllowedObjectTypes = map[ObjectType]bool{
	TypeStickyNote: true,
	TypeRectangle:  true,
	TypeCircle:     true,
	TypeLine:       true,
	TypeText:       true,
	TypeFrame:      true,
	TypeConnector:  true,
}

// ParseObjectType: returns the ObjectType named by s, or an error if s is outside the closed set
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(s)
	if !AllowedObjectTypes[t] {
		return "", fmt.Errorf("invalid object type: %q", s)
	}
	return t, nil
}

// UnmarshalJSON rejects names outside the closed set. The empty string is let
// through so that a missing type is reported by validation as "required".
func (t *ObjectType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("object type must be a string: %w", err)
	}
	if s == "" {
		*t = ""
		return nil
	}
	parsed, err := ParseObjectType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoardObject is one item of the caller's board snapshot. Everything but ID
// and Type is optional; absent means "not applicable to this type".
type BoardObject struct {
	ID          string     `json:"id" validate:"required,max=256"`
	Type        ObjectType `json:"type" validate:"required,objecttype"`
	X           *float64   `json:"x,omitempty"`
	Y           *float64   `json:"y,omitempty"`
	Width       *float64   `json:"width,omitempty"`
	Height      *float64   `json:"height,omitempty"`
	Radius      *float64   `json:"radius,omitempty"`
	Rotation    *float64   `json:"rotation,omitempty"`
	Text        *string    `json:"text,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Color       *string    `json:"color,omitempty"`
	StrokeColor *string    `json:"strokeColor,omitempty"`
	StrokeWidth *float64   `json:"strokeWidth,omitempty"`
	FontSize    *float64   `json:"fontSize,omitempty"`
	ZIndex      *int       `json:"zIndex,omitempty"`
	FromID      *string    `json:"fromId,omitempty"`
	ToID        *string    `json:"toId,omitempty"`
	ArrowEnd    *bool      `json:"arrowEnd,omitempty"`
	CreatedBy   *string    `json:"createdBy,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
