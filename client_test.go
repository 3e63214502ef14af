package mathlink_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathlink"
	"github.com/njchilds90/mathlink/cache"
	"github.com/njchilds90/mathlink/fullform"
	"github.com/njchilds90/mathlink/internal/fakekernel"
	"github.com/njchilds90/mathlink/kernel"
	. "github.com/njchilds90/mathlink/symbolic"
)

func TestMain(m *testing.M) {
	fakekernel.Main()
	os.Exit(m.Run())
}

func startClient(t *testing.T, opts ...mathlink.Option) *mathlink.Client {
	t.Helper()
	c, err := mathlink.Start(context.Background(), []kernel.Option{
		kernel.WithProgram(os.Args[0]),
		kernel.WithArgs(),
		kernel.WithEnv(fakekernel.Env(fakekernel.ModeServe)),
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// scripted is an in-process Session answering from a map.
type scripted struct {
	replies  map[string]string
	requests []string
	err      error
	closed   bool
}

func (s *scripted) Request(_ context.Context, text string) (string, error) {
	s.requests = append(s.requests, text)
	if s.err != nil {
		return "", s.err
	}
	if r, ok := s.replies[text]; ok {
		return r, nil
	}
	return text, nil
}

func (s *scripted) Close() error {
	s.closed = true
	return nil
}

func TestEvaluateText(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()

	got, err := c.EvaluateText(ctx, "D[Sin[x], x]")
	require.NoError(t, err)
	assert.Equal(t, "Cos[x]", got)

	got, err = c.EvaluateText(ctx, "Integrate[x^2, {x, -1, 1}]")
	require.NoError(t, err)
	assert.Equal(t, "Rational[2, 3]", got)

	got, err = c.EvaluateText(ctx, "Hold[x]")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestEvaluate(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()
	x := S("x")

	got, err := c.Evaluate(ctx, Apply("Integrate", x, x))
	require.NoError(t, err)
	assert.True(t, got.Equal(MulOf(F(1, 2), PowOf(x, N(2)))), "got %s", got)

	got, err = c.Evaluate(ctx, MulOf(I(), I()))
	require.NoError(t, err)
	assert.True(t, got.Equal(N(-1)), "got %s", got)

	got, err = c.Evaluate(ctx, Apply("Integrate", PowOf(x, N(2)), TupleOf(x, N(-1), N(1))))
	require.NoError(t, err)
	assert.True(t, got.Equal(F(2, 3)), "got %s", got)
}

func TestCall(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()
	x, n := S("x"), S("n")

	integrate := c.Resolve("Integrate")
	got, err := integrate(ctx, x, x)
	require.NoError(t, err)
	assert.True(t, got.Equal(MulOf(F(1, 2), PowOf(x, N(2)))), "got %s", got)

	got, err = c.Call(ctx, "D", SinOf(x), x)
	require.NoError(t, err)
	assert.True(t, got.Equal(CosOf(x)), "got %s", got)

	got, err = c.Call(ctx, "Integrate", PowOf(x, N(2)), TupleOf(x, N(-1), N(1)))
	require.NoError(t, err)
	assert.True(t, got.Equal(F(2, 3)), "got %s", got)

	got, err = c.Call(ctx, "Sum", n, TupleOf(n, N(1), N(10)))
	require.NoError(t, err)
	assert.True(t, got.Equal(N(55)), "got %s", got)
}

func TestCall_UnknownFunctionStaysUnevaluated(t *testing.T) {
	s := &scripted{}
	c := mathlink.New(s)

	// The kernel returns Apply[...] untouched; Apply is not a known head.
	_, err := c.Call(context.Background(), "NoSuchFunction", S("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fullform.ErrUnknownHead)
	assert.Equal(t, []string{"Apply[NoSuchFunction, List[x]]"}, s.requests)
}

func TestCall_NameBecomesHead(t *testing.T) {
	s := &scripted{replies: map[string]string{
		"Apply[FourierSinTransform, {Sin[x], x, y}]": "FourierSinTransform[Sin[x], x, y]",
	}}
	c := mathlink.New(s)
	x, y := S("x"), S("y")

	got, err := c.Call(context.Background(), "FourierSinTransform", SinOf(x), x, y)
	require.NoError(t, err)
	assert.True(t, got.Equal(Apply("FourierSinTransform", SinOf(x), x, y)), "got %s", got)

	// Evaluate does not learn the head from Call.
	_, err = c.Evaluate(context.Background(), Apply("FourierSinTransform", SinOf(x), x, y))
	assert.ErrorIs(t, err, fullform.ErrUnknownHead)

	c = mathlink.New(s, mathlink.WithHeads("FourierSinTransform"))
	_, err = c.Evaluate(context.Background(), Apply("FourierSinTransform", SinOf(x), x, y))
	assert.NoError(t, err)
}

func TestEvaluate_SessionError(t *testing.T) {
	s := &scripted{err: kernel.ErrProcessExited}
	c := mathlink.New(s)

	_, err := c.Evaluate(context.Background(), S("x"))
	assert.ErrorIs(t, err, kernel.ErrProcessExited)
	_, err = c.EvaluateText(context.Background(), "x")
	assert.ErrorIs(t, err, kernel.ErrProcessExited)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	mem, err := cache.NewMemory(8)
	require.NoError(t, err)
	s := &scripted{replies: map[string]string{"Apply[D, {Sin[x], x}]": "Cos[x]"}}
	c := mathlink.New(s, mathlink.WithCache(mem))
	x := S("x")

	for i := 0; i < 3; i++ {
		got, err := c.Call(ctx, "D", SinOf(x), x)
		require.NoError(t, err)
		assert.True(t, got.Equal(CosOf(x)), "got %s", got)
	}

	assert.Equal(t, []string{"Apply[D, {Sin[x], x}]"}, s.requests, "one kernel round trip")
	assert.Equal(t, 1, mem.Len())
}

// counter answers with the number of requests seen so far, like $Line.
type counter struct{ n int }

func (c *counter) Request(context.Context, string) (string, error) {
	c.n++
	return fmt.Sprint(c.n), nil
}

func (c *counter) Close() error { return nil }

func TestCache_StatefulRequestsReachKernel(t *testing.T) {
	ctx := context.Background()
	mem, err := cache.NewMemory(0)
	require.NoError(t, err)
	k := &counter{}
	c := mathlink.New(k, mathlink.WithCache(mem))

	first, err := c.EvaluateText(ctx, "$Line")
	require.NoError(t, err)
	second, err := c.EvaluateText(ctx, "$Line")
	require.NoError(t, err)
	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)

	r, err := c.Evaluate(ctx, S("x"))
	require.NoError(t, err)
	assert.True(t, r.Equal(N(3)), "got %s", r)

	assert.Equal(t, 3, k.n)
	assert.Equal(t, 0, mem.Len())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache offline")
}

func (brokenCache) Set(context.Context, string, string) error {
	return errors.New("cache offline")
}

func TestCache_FailureFallsThrough(t *testing.T) {
	s := &scripted{replies: map[string]string{"Apply[Times, {I, I}]": "-1"}}
	c := mathlink.New(s, mathlink.WithCache(brokenCache{}))

	got, err := c.Call(context.Background(), "Times", S("I"), S("I"))
	require.NoError(t, err)
	assert.True(t, got.Equal(N(-1)), "got %s", got)
	assert.Len(t, s.requests, 1)
}

func TestClose(t *testing.T) {
	s := &scripted{}
	c := mathlink.New(s)
	require.NoError(t, c.Close())
	assert.True(t, s.closed)
}
