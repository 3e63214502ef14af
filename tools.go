package mathlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/njchilds90/mathlink/fullform"
	"github.com/njchilds90/mathlink/symbolic"
)

// ErrNoSession is returned by tools that need a kernel when the Client has
// none.
var ErrNoSession = errors.New("mathlink: no kernel session")

// ToolRequest is a JSON tool invocation, as sent by agents over HTTP or MCP.
// Expressions in Params use the symbolic JSON form.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result   interface{} `json:"result,omitempty"`
	LaTeX    string      `json:"latex,omitempty"`
	String   string      `json:"string,omitempty"`
	FullForm string      `json:"fullform,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// HandleToolCall dispatches req. The fullform, parse, simplify, substitute
// and mcp_spec tools work on a nil Client; evaluate and call need a kernel.
func (c *Client) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getExpr := func(key string) (symbolic.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return symbolic.FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getExprList := func(key string) ([]symbolic.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]symbolic.Expr, len(raw))
		for i, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be expression object", key, i)
			}
			e, err := symbolic.FromJSON(m)
			if err != nil {
				return nil, err
			}
			result[i] = e
		}
		return result, nil
	}
	respond := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{
			Result:   symbolic.JSONValue(e),
			LaTeX:    symbolic.LaTeX(e),
			String:   symbolic.String(e),
			FullForm: fullform.Encode(e),
		}
	}
	fail := func(err error) ToolResponse {
		return ToolResponse{Error: err.Error()}
	}
	codec := fullform.Default()
	online := c != nil && c.session != nil
	if c != nil {
		codec = c.codec
	}

	switch req.Tool {
	case "evaluate":
		if !online {
			return fail(ErrNoSession)
		}
		if _, ok := req.Params["text"]; ok {
			text, err := getString("text")
			if err != nil {
				return fail(err)
			}
			out, err := c.EvaluateText(ctx, text)
			if err != nil {
				return fail(err)
			}
			return ToolResponse{Result: out, String: out, FullForm: out}
		}
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		r, err := c.Evaluate(ctx, e)
		if err != nil {
			return fail(err)
		}
		return respond(r)

	case "call":
		if !online {
			return fail(ErrNoSession)
		}
		name, err := getString("name")
		if err != nil {
			return fail(err)
		}
		args, err := getExprList("args")
		if err != nil {
			return fail(err)
		}
		r, err := c.Call(ctx, name, args...)
		if err != nil {
			return fail(err)
		}
		return respond(r)

	case "fullform":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		s := fullform.Encode(e)
		return ToolResponse{Result: s, String: s, FullForm: s}

	case "parse":
		text, err := getString("text")
		if err != nil {
			return fail(err)
		}
		e, err := codec.Decode(fullform.StripHold(text))
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(symbolic.Simplify(e))

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		val, err := getExpr("value")
		if err != nil {
			return fail(err)
		}
		return respond(symbolic.Sub(e, v, val))

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec()}

	default:
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
}

// HandleToolCallJSON decodes a ToolRequest from data and encodes the
// response.
func (c *Client) HandleToolCallJSON(ctx context.Context, data []byte) []byte {
	var req ToolRequest
	var resp ToolResponse
	if err := json.Unmarshal(data, &req); err != nil {
		resp = ToolResponse{Error: fmt.Sprintf("invalid request: %v", err)}
	} else {
		resp = c.HandleToolCall(ctx, req)
	}
	b, _ := json.Marshal(resp)
	return b
}

// MCPToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("evaluate", "Evaluate in the Wolfram kernel. Pass text (FullForm string, returns FullForm) or expr (expression object)", []string{}, map[string]string{"text": "string", "expr": "object"}),
		ts("call", "Apply a kernel function by name to expression arguments, e.g. name=Integrate args=[x, x]", []string{"name"}, map[string]string{"name": "string", "args": "array"}),
		ts("fullform", "Encode an expression as Wolfram FullForm text", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("parse", "Decode Wolfram FullForm text into an expression", []string{"text"}, map[string]string{"text": "string"}),
		ts("simplify", "Simplify a symbolic expression locally", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
