package mapper

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"collabboard/internal/object"
	"collabboard/internal/tools"
)

const (
	DefaultBulkCount      = 50
	DefaultBulkAreaWidth  = 5000.0
	DefaultBulkAreaHeight = 3000.0
)

// DefaultBulkTypes are the types bulk generation may produce. Frames and
// connectors need relational data a scatter cannot supply.
var DefaultBulkTypes = []object.ObjectType{
	object.TypeStickyNote,
	object.TypeRectangle,
	object.TypeCircle,
	object.TypeText,
	object.TypeLine,
}

// Generator expands a bulkCreate call into independent create Actions.
type Generator struct {
	maxCount int
	newRand  func() *rand.Rand
	logger   *zap.Logger
}

// NewGenerator creates a generator that produces at most maxCount actions
// per call. maxCount <= 0 disables the ceiling.
func NewGenerator(maxCount int, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		maxCount: maxCount,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: logger,
	}
}

// WithRand replaces the per-call random source constructor.
func (g *Generator) WithRand(newRand func() *rand.Rand) *Generator {
	g.newRand = newRand
	return g
}

// Generate returns count create Actions scattered over the area. Every call
// draws from its own random source.
func (g *Generator) Generate(args tools.BulkCreateArgs) []object.Action {
	count := or(args.Count, DefaultBulkCount)
	if g.maxCount > 0 && count > g.maxCount {
		g.logger.Warn("bulk count clamped",
			zap.Int("requested", count),
			zap.Int("max", g.maxCount))
		count = g.maxCount
	}
	if count < 1 {
		return nil
	}

	types := g.bulkTypes(args.Types)

	var area tools.Area
	if args.Area != nil {
		area = *args.Area
	}
	ax := or(area.X, 0)
	ay := or(area.Y, 0)
	aw := or(area.Width, DefaultBulkAreaWidth)
	ah := or(area.Height, DefaultBulkAreaHeight)

	r := g.newRand()
	actions := make([]object.Action, 0, count)
	for i := 1; i <= count; i++ {
		objType := types[r.IntN(len(types))]
		color := object.BulkPalette[r.IntN(len(object.BulkPalette))]
		props := object.Properties{
			X:        object.Ptr(ax + r.Float64()*aw),
			Y:        object.Ptr(ay + r.Float64()*ah),
			Color:    object.Ptr(color),
			Rotation: object.Ptr(0.0),
		}

		switch objType {
		case object.TypeStickyNote:
			props.Width = object.Ptr(between(r, 150, 250))
			props.Height = object.Ptr(between(r, 120, 180))
			props.Text = object.Ptr(fmt.Sprintf("Note %d", i))
		case object.TypeRectangle:
			props.Width = object.Ptr(between(r, 80, 200))
			props.Height = object.Ptr(between(r, 80, 200))
		case object.TypeCircle:
			props.Radius = object.Ptr(between(r, 30, 80))
		case object.TypeText:
			props.FontSize = object.Ptr(between(r, 14, 32))
			props.Width = object.Ptr(between(r, 100, 300))
			props.Color = object.Ptr(object.ColorText)
			props.Text = object.Ptr(fmt.Sprintf("Text %d", i))
		case object.TypeLine:
			props.Width = object.Ptr(between(r, 80, 250))
			props.StrokeWidth = object.Ptr(between(r, 2, 5))
		}

		actions = append(actions, object.NewCreate(objType, props))
	}

	return actions
}

// bulkTypes keeps the requested types bulk generation can draw, falling
// back to DefaultBulkTypes when none remain.
func (g *Generator) bulkTypes(requested []object.ObjectType) []object.ObjectType {
	types := make([]object.ObjectType, 0, len(requested))
	for _, t := range requested {
		if slices.Contains(DefaultBulkTypes, t) {
			types = append(types, t)
			continue
		}
		g.logger.Warn("bulk type not generated", zap.String("type", string(t)))
	}
	if len(types) == 0 {
		return DefaultBulkTypes
	}
	return types
}

// between returns a whole number in [lo, hi].
func between(r *rand.Rand, lo, hi int) float64 {
	return float64(lo + r.IntN(hi-lo+1))
}
