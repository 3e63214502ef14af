// Package mathlink calls Wolfram kernel functions from Go as if they were
// local operations on symbolic expressions.
//
//	c, err := mathlink.Start(ctx, nil)
//	if err != nil { ... }
//	defer c.Close()
//
//	x := symbolic.S("x")
//	integrate := c.Resolve("Integrate")
//	r, err := integrate(ctx, x, x) // Times[Rational[1, 2], Power[x, 2]] -> x^2/2
//
// Expressions are encoded with package fullform, sent through a kernel
// session, stripped of any Hold wrapper and decoded back. EvaluateText
// skips the codec on both sides and returns the kernel's FullForm text.
//
// A Client is not safe for concurrent use: it owns one kernel session and
// requests on it are strictly sequential.
package mathlink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/njchilds90/mathlink/cache"
	"github.com/njchilds90/mathlink/fullform"
	"github.com/njchilds90/mathlink/internal/logging"
	"github.com/njchilds90/mathlink/kernel"
	"github.com/njchilds90/mathlink/symbolic"
)

// Session is one request/reply channel to a kernel. *kernel.Session
// implements it.
type Session interface {
	Request(ctx context.Context, text string) (string, error)
	Close() error
}

// Func is a kernel function bound by name.
type Func func(ctx context.Context, args ...symbolic.Expr) (symbolic.Expr, error)

// Client is the call adapter over a Session.
type Client struct {
	session Session
	codec   *fullform.Codec
	cache   cache.Cache
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache serves repeated Call and Resolve requests from c. Only named
// function calls are cached: EvaluateText and Evaluate always reach the
// kernel, since the session is stateful (assignments, $Line, %, random
// numbers). Functions called through a cached Client must be pure. A shared
// backend such as Redis hands the same replies to every process using it.
// Cache failures are logged and the kernel is asked instead.
func WithCache(c cache.Cache) Option {
	return func(cl *Client) {
		cl.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// WithHeads lets Evaluate decode replies that use heads outside the fixed
// vocabulary.
func WithHeads(names ...string) Option {
	return func(cl *Client) {
		cl.codec = cl.codec.WithHeads(names...)
	}
}

// New wraps an open session. The Client takes ownership: Close closes it.
func New(s Session, opts ...Option) *Client {
	c := &Client{
		session: s,
		codec:   fullform.Default(),
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches a kernel with kernelOpts and wraps it.
func Start(ctx context.Context, kernelOpts []kernel.Option, opts ...Option) (*Client, error) {
	s, err := kernel.Start(ctx, kernelOpts...)
	if err != nil {
		return nil, err
	}
	return New(s, opts...), nil
}

// Session returns the underlying session.
func (c *Client) Session() Session { return c.session }

// Codec returns the codec used to decode replies.
func (c *Client) Codec() *fullform.Codec { return c.codec }

// EvaluateText sends raw FullForm text and returns the kernel's reply as
// text, with a Hold wrapper removed.
func (c *Client) EvaluateText(ctx context.Context, text string) (string, error) {
	reply, err := c.request(ctx, text, false)
	if err != nil {
		return "", err
	}
	return fullform.StripHold(reply), nil
}

// Evaluate encodes e, lets the kernel evaluate it and decodes the result.
func (c *Client) Evaluate(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error) {
	return c.exchange(ctx, fullform.Encode(e), c.codec, false)
}

// Resolve binds a kernel function by name. The returned Func sends
// Apply[name, {args...}] and decodes the reply, accepting name as a head.
// name is not checked; an unknown function surfaces as a decode or
// protocol error.
func (c *Client) Resolve(name string) Func {
	codec := c.codec.WithHeads(name)
	return func(ctx context.Context, args ...symbolic.Expr) (symbolic.Expr, error) {
		text := "Apply[" + name + ", " + fullform.Encode(symbolic.TupleOf(args...)) + "]"
		return c.exchange(ctx, text, codec, true)
	}
}

// Call is Resolve(name)(ctx, args...).
func (c *Client) Call(ctx context.Context, name string, args ...symbolic.Expr) (symbolic.Expr, error) {
	return c.Resolve(name)(ctx, args...)
}

// Close shuts down the kernel session.
func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) exchange(ctx context.Context, text string, codec *fullform.Codec, cached bool) (symbolic.Expr, error) {
	reply, err := c.request(ctx, text, cached)
	if err != nil {
		return nil, err
	}
	e, err := codec.Decode(fullform.StripHold(reply))
	if err != nil {
		return nil, fmt.Errorf("mathlink: reply to %s: %w", text, err)
	}
	return e, nil
}

func (c *Client) request(ctx context.Context, text string, cached bool) (string, error) {
	cached = cached && c.cache != nil
	var key string
	if cached {
		key = cache.Key("call", text)
		v, found, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn("cache read failed", "request", text, "error", err)
		case found:
			c.log.Debug("cache hit", "request", text)
			return v, nil
		}
	}

	reply, err := c.session.Request(ctx, text)
	if err != nil {
		return "", fmt.Errorf("mathlink: %s: %w", text, err)
	}

	if cached {
		if err := c.cache.Set(ctx, key, reply); err != nil {
			c.log.Warn("cache write failed", "request", text, "error", err)
		}
	}
	return reply, nil
}
