package object

import (
	"encoding/json"
	"fmt"
)

// ActionType: kind of edit a client applies to its board
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// UnmarshalJSON rejects action kinds outside create/update/delete.
func (t *ActionType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("action type must be a string: %w", err)
	}
	switch ActionType(s) {
	case ActionCreate, ActionUpdate, ActionDelete:
		*t = ActionType(s)
		return nil
	default:
		return fmt.Errorf("invalid action type: %q", s)
	}
}

// Properties is the property bag of an Action. A nil field is absent from
// the wire form; a non-nil field is present even when it holds a zero value.
type Properties struct {
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Radius      *float64 `json:"radius,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Color       *string  `json:"color,omitempty"`
	StrokeColor *string  `json:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"`
	ZIndex      *int     `json:"zIndex,omitempty"`
	FromID      *string  `json:"fromId,omitempty"`
	ToID        *string  `json:"toId,omitempty"`
	ArrowEnd    *bool    `json:"arrowEnd,omitempty"`
}

// Keys returns the wire names of the fields that are present, in wire order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	fields := []struct {
		name    string
		present bool
	}{
		{"x", p.X != nil},
		{"y", p.Y != nil},
		{"width", p.Width != nil},
		{"height", p.Height != nil},
		{"radius", p.Radius != nil},
		{"rotation", p.Rotation != nil},
		{"text", p.Text != nil},
		{"title", p.Title != nil},
		{"color", p.Color != nil},
		{"strokeColor", p.StrokeColor != nil},
		{"strokeWidth", p.StrokeWidth != nil},
		{"fontSize", p.FontSize != nil},
		{"zIndex", p.ZIndex != nil},
		{"fromId", p.FromID != nil},
		{"toId", p.ToID != nil},
		{"arrowEnd", p.ArrowEnd != nil},
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.present {
			keys = append(keys, f.name)
		}
	}
	return keys
}

// Action is one atomic edit instruction.
//
// create carries ObjectType and Properties; update carries ObjectID and a
// partial Properties; delete carries only ObjectID.
type Action struct {
	Type       ActionType  `json:"type"`
	ObjectType ObjectType  `json:"objectType,omitempty"`
	ObjectID   string      `json:"objectId,omitempty"`
	Properties *Properties `json:"properties,omitempty"`
}

// NewCreate builds a create Action.
func NewCreate(t ObjectType, props Properties) Action {
	return Action{Type: ActionCreate, ObjectType: t, Properties: &props}
}

// NewUpdate builds an update Action carrying only the given fields.
func NewUpdate(objectID string, props Properties) Action {
	return Action{Type: ActionUpdate, ObjectID: objectID, Properties: &props}
}

// NewDelete builds a delete Action.
func NewDelete(objectID string) Action {
	return Action{Type: ActionDelete, ObjectID: objectID}
}
