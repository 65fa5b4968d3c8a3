package mapper

import (
	"fmt"

	"collabboard/internal/apperr"
	"collabboard/internal/object"
	"collabboard/internal/tools"
)

// Outcome is the result of mapping one tool call: Mapped, Deferred or Failed.
type Outcome interface {
	outcome()
}

// Mapped carries the single Action a tool call translates to.
type Mapped struct {
	Action object.Action
}

// Deferred marks a call that needs more context than one call carries
// (the board snapshot, a random source). The caller handles it.
type Deferred struct {
	Args tools.Args
}

// Failed marks a call that could not be mapped. Err is an *apperr.Error
// with code UNKNOWN_OPERATION or MALFORMED_TOOL_ARGUMENTS.
type Failed struct {
	Name string
	Err  error
}

func (Mapped) outcome()   {}
func (Deferred) outcome() {}
func (Failed) outcome()   {}

// Defaults applied when an optional argument is absent.
const (
	DefaultStickyWidth     = 200.0
	DefaultStickyHeight    = 150.0
	DefaultShapeSize       = 120.0
	DefaultCircleRadius    = 60.0
	DefaultFontSize        = 20.0
	DefaultTextWidth       = 200.0
	DefaultLineLength      = 150.0
	DefaultLineStroke      = 3.0
	DefaultFrameWidth      = 400.0
	DefaultFrameHeight     = 300.0
	DefaultFrameTitle      = "Frame"
	DefaultConnectorStroke = 2.0
)

// Mapper translates tool calls into Actions using a catalog for decoding.
type Mapper struct {
	catalog *tools.Catalog
}

func New(catalog *tools.Catalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Map decodes call and maps its arguments. It never panics on bad input;
// every problem comes back as Failed.
func (m *Mapper) Map(call tools.Call) Outcome {
	args, err := m.catalog.Decode(call)
	if err != nil {
		return Failed{Name: call.Name, Err: err}
	}
	return MapArgs(args)
}

// MapArgs maps already decoded arguments.
func MapArgs(args tools.Args) Outcome {
	switch a := args.(type) {
	case tools.CreateStickyNoteArgs:
		return Mapped{object.NewCreate(object.TypeStickyNote, object.Properties{
			X:        object.Ptr(a.X),
			Y:        object.Ptr(a.Y),
			Text:     object.Ptr(or(a.Text, "")),
			Color:    object.Ptr(or(a.Color, object.ColorStickyNote)),
			Width:    object.Ptr(or(a.Width, DefaultStickyWidth)),
			Height:   object.Ptr(or(a.Height, DefaultStickyHeight)),
			Rotation: object.Ptr(0.0),
		})}

	case tools.CreateShapeArgs:
		props := object.Properties{
			X:        object.Ptr(a.X),
			Y:        object.Ptr(a.Y),
			Color:    object.Ptr(or(a.Color, object.ColorShape)),
			Rotation: object.Ptr(0.0),
		}
		switch a.ShapeType {
		case tools.ShapeRectangle:
			props.Width = object.Ptr(or(a.Width, DefaultShapeSize))
			props.Height = object.Ptr(or(a.Height, DefaultShapeSize))
			return Mapped{object.NewCreate(object.TypeRectangle, props)}
		case tools.ShapeCircle:
			props.Radius = object.Ptr(or(a.Radius, DefaultCircleRadius))
			return Mapped{object.NewCreate(object.TypeCircle, props)}
		default:
			return Failed{
				Name: a.Operation().String(),
				Err:  apperr.NewMalformedToolArguments(a.Operation().String(), fmt.Errorf("unknown shapeType %q", a.ShapeType)),
			}
		}

	case tools.CreateTextArgs:
		return Mapped{object.NewCreate(object.TypeText, object.Properties{
			X:        object.Ptr(a.X),
			Y:        object.Ptr(a.Y),
			Text:     object.Ptr(or(a.Text, "")),
			FontSize: object.Ptr(or(a.FontSize, DefaultFontSize)),
			Color:    object.Ptr(or(a.Color, object.ColorText)),
			Width:    object.Ptr(or(a.Width, DefaultTextWidth)),
			Rotation: object.Ptr(0.0),
		})}

	case tools.CreateLineArgs:
		return Mapped{object.NewCreate(object.TypeLine, object.Properties{
			X:           object.Ptr(a.X),
			Y:           object.Ptr(a.Y),
			Width:       object.Ptr(or(a.Width, DefaultLineLength)),
			Color:       object.Ptr(or(a.Color, object.ColorStroke)),
			StrokeWidth: object.Ptr(or(a.StrokeWidth, DefaultLineStroke)),
			Rotation:    object.Ptr(or(a.Rotation, 0.0)),
		})}

	case tools.CreateFrameArgs:
		return Mapped{object.NewCreate(object.TypeFrame, object.Properties{
			X:        object.Ptr(a.X),
			Y:        object.Ptr(a.Y),
			Width:    object.Ptr(or(a.Width, DefaultFrameWidth)),
			Height:   object.Ptr(or(a.Height, DefaultFrameHeight)),
			Title:    object.Ptr(or(a.Title, DefaultFrameTitle)),
			Color:    object.Ptr(or(a.Color, object.ColorStroke)),
			Rotation: object.Ptr(0.0),
			ZIndex:   object.Ptr(0),
		})}

	case tools.CreateConnectorArgs:
		return Mapped{object.NewCreate(object.TypeConnector, object.Properties{
			FromID:      object.Ptr(a.FromID),
			ToID:        object.Ptr(a.ToID),
			StrokeColor: object.Ptr(or(a.StrokeColor, object.ColorStroke)),
			StrokeWidth: object.Ptr(or(a.StrokeWidth, DefaultConnectorStroke)),
			ArrowEnd:    object.Ptr(or(a.ArrowEnd, true)),
		})}

	case tools.MoveObjectArgs:
		return Mapped{object.NewUpdate(a.ObjectID, object.Properties{
			X: object.Ptr(a.X),
			Y: object.Ptr(a.Y),
		})}

	case tools.ResizeObjectArgs:
		return Mapped{object.NewUpdate(a.ObjectID, object.Properties{
			Width:  a.Width,
			Height: a.Height,
			Radius: a.Radius,
		})}

	case tools.UpdateTextArgs:
		return Mapped{object.NewUpdate(a.ObjectID, object.Properties{
			Text:  a.Text,
			Title: a.Title,
		})}

	case tools.ChangeColorArgs:
		return Mapped{object.NewUpdate(a.ObjectID, object.Properties{
			Color: object.Ptr(a.Color),
		})}

	case tools.DeleteObjectArgs:
		return Mapped{object.NewDelete(a.ObjectID)}

	case tools.BulkCreateArgs, tools.DeleteAllArgs:
		return Deferred{Args: a}

	default:
		name := "unknown"
		if args != nil {
			name = args.Operation().String()
		}
		return Failed{Name: name, Err: apperr.NewUnknownOperation(name)}
	}
}

func or[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
