package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"collabboard/internal/object"
)

const defaultViewportHint = "not provided, use (600, 400) as default center"

// SystemPrompt is sent with every command.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var colors []string
	for _, c := range object.Palette {
		colors = append(colors, fmt.Sprintf("%s (%s)", c.Hex, c.Name))
	}

	return `You are the assistant inside CollabBoard, a collaborative whiteboard.
You change the board only by calling the tools you are given.

## Object types
- stickyNote: coloured note with text, 200x150 by default. Use for ideas and list items.
- rectangle: filled rectangle, 120x120 by default.
- circle: filled circle, radius 60 by default.
- line: straight line, 150 long by default.
- text: free-standing label, font size 20 and width 200 by default. Use for headings.
- frame: titled container drawn behind other objects, 400x300 by default. Use to group items.
- connector: arrow between two objects that already exist on the board.

## Colours
` + strings.Join(colors, ", ") + `

## Coordinates
The origin (0,0) is the top-left of the canvas; x grows to the right and y grows downward.
A typical viewport is about 1200x800. Centre new content on the viewport centre you are given.
Leave at least 20-30px between objects and never stack objects on top of each other.

## Board state
You receive the current board as a JSON array. Every object has an "id"; use it for moves,
resizes, edits, recolouring, deletion and connectors. Objects with a colour also carry a
"colorName" hint so you can resolve requests like "the blue notes".

## Guidelines
1. Lay out multiple objects in a grid or other clear arrangement.
2. For structured layouts (SWOT, kanban, retrospectives) create the frames first, then place
   notes inside the frame bounds, then add text headings.
3. Use distinct colours for distinct groups. For SWOT use Green for strengths, Red for
   weaknesses, Blue for opportunities and Orange for threats.
4. Only connect objects whose ids appear in the board state. Objects you create in this
   request have no id yet.
5. Keep sticky note text short, one to three sentences.
6. Check the board before creating duplicates. When asked to add to an existing frame, place
   the new object inside that frame.
7. When asked for many objects (more than about ten) use bulkCreate instead of many single
   calls. When asked to clear the board use deleteAll.

## Response
Always call at least one tool when the request asks for a change. Then reply with one or two
friendly sentences summarising what you did.`
}

// promptObject is a BoardObject plus the nearest palette name of its colour.
type promptObject struct {
	object.BoardObject
	ColorName string `json:"colorName,omitempty"`
}

// serializeBoard renders the snapshot as one compact JSON array with absent
// fields omitted.
func serializeBoard(board []object.BoardObject) (string, error) {
	objs := make([]promptObject, len(board))
	for i, b := range board {
		objs[i] = promptObject{BoardObject: b}
		if b.Color != nil {
			if name, ok := object.NearestColorName(*b.Color); ok {
				objs[i].ColorName = name
			}
		}
	}
	raw, err := json.Marshal(objs)
	if err != nil {
		return "", fmt.Errorf("serialize board: %w", err)
	}
	return string(raw), nil
}

func viewportHint(p *object.Point) string {
	if p == nil {
		return defaultViewportHint
	}
	return fmt.Sprintf(`{"x": %s, "y": %s}`, formatNumber(p.X), formatNumber(p.Y))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BuildUserMessage assembles the user turn: board, viewport, then command.
func BuildUserMessage(cmd Command) (string, error) {
	board, err := serializeBoard(cmd.Board)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Board state (current objects on the board):\n")
	b.WriteString(board)
	b.WriteString("\n\nViewport center: ")
	b.WriteString(viewportHint(cmd.Viewport))
	b.WriteString("\n\nUser command: ")
	b.WriteString(cmd.Text)
	return b.String(), nil
}
