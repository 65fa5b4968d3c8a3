package agent

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"collabboard/internal/apperr"
	"collabboard/internal/llm"
	"collabboard/internal/mapper"
	"collabboard/internal/object"
	"collabboard/internal/tools"
)

func TestMain(m *testing.M) {
	// opencensus, linked in through the Gemini SDK, starts its view worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var catalog = tools.MustCatalog()

func call(name, args string) tools.Call {
	return tools.Call{Name: name, Arguments: json.RawMessage(args)}
}

// scripted returns a client that answers every request with resp and
// records the last request it saw.
func scripted(resp *llm.Response, seen *llm.Request) llm.Client {
	return llm.ClientFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		if seen != nil {
			*seen = req
		}
		return resp, nil
	})
}

func defaultOptions() Options {
	return Options{Temperature: 0.3, MaxTokens: 4096, MaxBulkCount: 500}
}

func board(ids ...string) []object.BoardObject {
	out := make([]object.BoardObject, len(ids))
	for i, id := range ids {
		out[i] = object.BoardObject{ID: id, Type: object.TypeStickyNote}
	}
	return out
}

func TestHandle_MapsCallsInOrder(t *testing.T) {
	var seen llm.Request
	client := scripted(&llm.Response{
		Text: "Created a note and moved another.",
		ToolCalls: []tools.Call{
			call("createStickyNote", `{"x":100,"y":200,"text":"Hello"}`),
			call("moveObject", `{"objectId":"obj-1","x":500,"y":600}`),
			call("deleteObject", `{"objectId":"obj-2"}`),
		},
	}, &seen)

	o := New(client, catalog, nil, defaultOptions())
	res, err := o.Handle(context.Background(), Command{Text: "do things", Board: board("obj-1", "obj-2"), BoardID: "b1"})
	require.NoError(t, err)

	want := []object.Action{
		object.NewCreate(object.TypeStickyNote, object.Properties{
			X: object.Ptr(100.0), Y: object.Ptr(200.0), Text: object.Ptr("Hello"),
			Color: object.Ptr("#FDE68A"), Width: object.Ptr(200.0), Height: object.Ptr(150.0),
			Rotation: object.Ptr(0.0),
		}),
		object.NewUpdate("obj-1", object.Properties{X: object.Ptr(500.0), Y: object.Ptr(600.0)}),
		object.NewDelete("obj-2"),
	}
	if diff := cmp.Diff(want, res.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Created a note and moved another.", res.Message)

	assert.Equal(t, SystemPrompt, seen.System)
	assert.InDelta(t, 0.3, seen.Temperature, 1e-6)
	assert.Equal(t, 4096, seen.MaxTokens)
	assert.Len(t, seen.Tools, catalog.Len())
	assert.Contains(t, seen.User, "User command: do things")
}

func TestHandle_FallbackMessage(t *testing.T) {
	o := New(scripted(&llm.Response{}, nil), catalog, nil, defaultOptions())
	res, err := o.Handle(context.Background(), Command{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, res.Message)
	assert.Empty(t, res.Actions)
	assert.NotNil(t, res.Actions)
}

func TestHandle_MessagePassesThrough(t *testing.T) {
	text := "Added a note about List<String> & Map<K, V>."
	o := New(scripted(&llm.Response{Text: text}, nil), catalog, nil, defaultOptions())
	res, err := o.Handle(context.Background(), Command{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, text, res.Message)
}

func TestHandle_TextKeepsAngleBrackets(t *testing.T) {
	client := scripted(&llm.Response{ToolCalls: []tools.Call{
		call("createStickyNote", `{"x":1,"y":2,"text":"Use List<String> here"}`),
		call("updateText", `{"objectId":"n1","text":"<script>x</script>a <b>bold</b>"}`),
		call("createFrame", `{"x":0,"y":0,"title":"<Backlog>"}`),
	}}, nil)
	o := New(client, catalog, nil, defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "notes"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 3)
	assert.Equal(t, "Use List<String> here", *res.Actions[0].Properties.Text)
	assert.Equal(t, "<script>x</script>a <b>bold</b>", *res.Actions[1].Properties.Text)
	assert.Equal(t, "<Backlog>", *res.Actions[2].Properties.Title)
}

func TestHandle_DeleteAll(t *testing.T) {
	client := scripted(&llm.Response{ToolCalls: []tools.Call{call("deleteAll", `{}`)}}, nil)
	o := New(client, catalog, nil, defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "clear", Board: board("a", "b", "c", "b")})
	require.NoError(t, err)

	want := []object.Action{object.NewDelete("a"), object.NewDelete("b"), object.NewDelete("c")}
	assert.Equal(t, want, res.Actions)
}

func TestHandle_BulkExpandsInPlace(t *testing.T) {
	client := scripted(&llm.Response{ToolCalls: []tools.Call{
		call("createFrame", `{"x":0,"y":0}`),
		call("bulkCreate", `{"count":5}`),
		call("deleteObject", `{"objectId":"z"}`),
	}}, nil)

	gen := mapper.NewGenerator(500, nil).WithRand(func() *rand.Rand {
		return rand.New(rand.NewPCG(1, 2))
	})
	o := New(client, catalog, nil, defaultOptions()).WithGenerator(gen)

	res, err := o.Handle(context.Background(), Command{Text: "lots"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 7)

	assert.Equal(t, object.TypeFrame, res.Actions[0].ObjectType)
	for _, a := range res.Actions[1:6] {
		assert.Equal(t, object.ActionCreate, a.Type)
		assert.Contains(t, mapper.DefaultBulkTypes, a.ObjectType)
	}
	assert.Equal(t, object.NewDelete("z"), res.Actions[6])
}

func TestHandle_SkipsBadCalls(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := scripted(&llm.Response{ToolCalls: []tools.Call{
		call("unknownTool", `{}`),
		call("moveObject", `{"objectId":"obj-1","x":5,"y":6}`),
		call("createStickyNote", `{"y":1}`),
	}}, nil)
	o := New(client, catalog, zap.New(core), defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "go"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "obj-1", res.Actions[0].ObjectID)

	failures := logs.FilterMessage("Error processing tool call").All()
	require.Len(t, failures, 2)
	assert.Equal(t, "unknownTool", failures[0].ContextMap()["tool"])
	assert.Equal(t, string(apperr.CodeUnknownOperation), failures[0].ContextMap()["code"])
	assert.Equal(t, string(apperr.CodeMalformedToolArguments), failures[1].ContextMap()["code"])
}

func TestHandle_OutOfRangeArgumentsAreMalformed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := scripted(&llm.Response{ToolCalls: []tools.Call{
		call("createShape", `{"shapeType":"rectangle","x":5000000,"y":0}`),
		call("createLine", `{"x":1,"y":2,"rotation":450}`),
		call("createShape", `{"shapeType":"rectangle","x":0,"y":0,"width":-5}`),
		call("createText", `{"x":0,"y":0,"fontSize":0}`),
		call("bulkCreate", `{"count":5,"area":{"x":2000000,"y":0,"width":100,"height":100}}`),
		call("createShape", `{"shapeType":"circle","x":10,"y":10}`),
	}}, nil)
	o := New(client, catalog, zap.New(core), defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "shapes"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, object.TypeCircle, res.Actions[0].ObjectType)

	failures := logs.FilterMessage("Error processing tool call").All()
	require.Len(t, failures, 5)
	for _, f := range failures {
		assert.Equal(t, string(apperr.CodeMalformedToolArguments), f.ContextMap()["code"])
	}
}

func TestHandle_BulkReturnsEveryGeneratedAction(t *testing.T) {
	client := scripted(&llm.Response{ToolCalls: []tools.Call{
		call("bulkCreate", `{"count":25,"area":{"x":1000000,"y":1000000,"width":1000000,"height":1000000}}`),
	}}, nil)
	o := New(client, catalog, nil, defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "far away"})
	require.NoError(t, err)
	require.Len(t, res.Actions, 25)
	for _, a := range res.Actions {
		assert.GreaterOrEqual(t, *a.Properties.X, 1000000.0)
		assert.LessOrEqual(t, *a.Properties.X, 2000000.0)
	}
}

func TestHandle_UpstreamFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, errors.New("openai api: 429 Too Many Requests: quota exceeded for org-123")
	})
	o := New(client, catalog, zap.New(core), defaultOptions())

	res, err := o.Handle(context.Background(), Command{Text: "go", Board: board("a")})
	require.Error(t, err)
	assert.Nil(t, res)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeUpstreamLLMFailure, appErr.Code)
	assert.Equal(t, 500, appErr.Status)
	assert.Equal(t, "AI request failed", appErr.Message)
	assert.NotContains(t, appErr.Message, "quota")

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "quota exceeded")
}

func TestHandle_DeterministicShape(t *testing.T) {
	resp := &llm.Response{ToolCalls: []tools.Call{
		call("createText", `{"x":1,"y":2,"text":"Title"}`),
		call("changeColor", `{"objectId":"a","color":"#BBF7D0"}`),
	}}
	o := New(scripted(resp, nil), catalog, nil, defaultOptions())

	cmd := Command{Text: "same", Board: board("a")}
	first, err := o.Handle(context.Background(), cmd)
	require.NoError(t, err)
	second, err := o.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildUserMessage(t *testing.T) {
	msg, err := BuildUserMessage(Command{
		Text: "make it blue",
		Board: []object.BoardObject{
			{ID: "n1", Type: object.TypeStickyNote, X: object.Ptr(10.0), Color: object.Ptr("#BFDBFE")},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(msg, "Board state (current objects on the board):\n["))
	assert.Contains(t, msg, `{"id":"n1","type":"stickyNote","x":10,"color":"#BFDBFE","colorName":"Blue"}`)
	assert.Contains(t, msg, "\n\nViewport center: not provided, use (600, 400) as default center\n\n")
	assert.True(t, strings.HasSuffix(msg, "User command: make it blue"))

	msg, err = BuildUserMessage(Command{Text: "x", Viewport: &object.Point{X: 640, Y: 360.5}})
	require.NoError(t, err)
	assert.Contains(t, msg, "Board state (current objects on the board):\n[]\n")
	assert.Contains(t, msg, `Viewport center: {"x": 640, "y": 360.5}`)
}

func TestSystemPromptMentionsCatalog(t *testing.T) {
	for _, c := range object.Palette {
		assert.Contains(t, SystemPrompt, c.Hex)
	}
	assert.Contains(t, SystemPrompt, "bulkCreate")
	assert.Contains(t, SystemPrompt, "deleteAll")
}
