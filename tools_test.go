package mathlink_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathlink"
	. "github.com/njchilds90/mathlink/symbolic"
)

func toolReq(tool string, params map[string]interface{}) mathlink.ToolRequest {
	return mathlink.ToolRequest{Tool: tool, Params: params}
}

// jsonOf round-trips e through encoding/json so params look like decoded
// request bodies.
func jsonOf(t *testing.T, e Expr) map[string]interface{} {
	t.Helper()
	s, err := ToJSON(e)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestHandleToolCall_Offline(t *testing.T) {
	var c *mathlink.Client
	ctx := context.Background()
	x := S("x")

	resp := c.HandleToolCall(ctx, toolReq("fullform", map[string]interface{}{
		"expr": jsonOf(t, AddOf(x, PowOf(x, N(2)))),
	}))
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.FullForm, "Power[x, 2]")
	assert.Equal(t, resp.FullForm, resp.Result)

	resp = c.HandleToolCall(ctx, toolReq("parse", map[string]interface{}{
		"text": "Times[Rational[1, 2], Power[x, 2]]",
	}))
	require.Empty(t, resp.Error)
	assert.Equal(t, "Times[Rational[1, 2], Power[x, 2]]", resp.FullForm)
	assert.NotEmpty(t, resp.LaTeX)

	resp = c.HandleToolCall(ctx, toolReq("substitute", map[string]interface{}{
		"expr":  jsonOf(t, MulOf(N(2), x)),
		"var":   "x",
		"value": jsonOf(t, N(3)),
	}))
	require.Empty(t, resp.Error)
	assert.Equal(t, "6", resp.String)

	resp = c.HandleToolCall(ctx, toolReq("evaluate", map[string]interface{}{"text": "1"}))
	assert.Equal(t, mathlink.ErrNoSession.Error(), resp.Error)
}

func TestHandleToolCall_Kernel(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()
	x := S("x")

	resp := c.HandleToolCall(ctx, toolReq("evaluate", map[string]interface{}{"text": "D[Sin[x], x]"}))
	require.Empty(t, resp.Error)
	assert.Equal(t, "Cos[x]", resp.Result)

	resp = c.HandleToolCall(ctx, toolReq("evaluate", map[string]interface{}{
		"expr": jsonOf(t, Apply("Integrate", x, x)),
	}))
	require.Empty(t, resp.Error)
	assert.Equal(t, "Times[Rational[1, 2], Power[x, 2]]", resp.FullForm)

	resp = c.HandleToolCall(ctx, toolReq("call", map[string]interface{}{
		"name": "Sum",
		"args": []interface{}{jsonOf(t, S("n")), jsonOf(t, TupleOf(S("n"), N(1), N(10)))},
	}))
	require.Empty(t, resp.Error)
	assert.Equal(t, "55", resp.String)
}

func TestHandleToolCall_Errors(t *testing.T) {
	c := mathlink.New(&scripted{})
	ctx := context.Background()

	cases := []mathlink.ToolRequest{
		toolReq("nope", nil),
		toolReq("fullform", nil),
		toolReq("fullform", map[string]interface{}{"expr": "x"}),
		toolReq("parse", map[string]interface{}{"text": "Plus[x"}),
		toolReq("call", map[string]interface{}{"args": []interface{}{}}),
		toolReq("call", map[string]interface{}{"name": "D", "args": "x"}),
	}
	for _, req := range cases {
		resp := c.HandleToolCall(ctx, req)
		assert.NotEmpty(t, resp.Error, "%s %v", req.Tool, req.Params)
	}
}

func TestHandleToolCallJSON(t *testing.T) {
	var c *mathlink.Client
	out := c.HandleToolCallJSON(context.Background(), []byte(`{"tool":"parse","params":{"text":"Sin[x]"}}`))
	var resp mathlink.ToolResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "Sin[x]", resp.FullForm)

	out = c.HandleToolCallJSON(context.Background(), []byte(`{`))
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Contains(t, resp.Error, "invalid request")
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(mathlink.MCPToolSpec()), &spec))
	var names []string
	for _, tool := range spec.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"evaluate", "call", "fullform", "parse", "simplify", "substitute", "mcp_spec"}, names)
}
