package kernel_test

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathlink/internal/fakekernel"
	"github.com/njchilds90/mathlink/kernel"
)

func TestMain(m *testing.M) {
	fakekernel.Main()
	os.Exit(m.Run())
}

// fake starts this test binary as the scripted kernel.
func fake(mode string, extra ...kernel.Option) []kernel.Option {
	return append([]kernel.Option{
		kernel.WithProgram(os.Args[0]),
		kernel.WithArgs(),
		kernel.WithEnv(fakekernel.Env(mode)),
	}, extra...)
}

func startFake(t *testing.T, extra ...kernel.Option) *kernel.Session {
	t.Helper()
	s, err := kernel.Start(context.Background(), fake(fakekernel.ModeServe, extra...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStart_Banner(t *testing.T) {
	s := startFake(t)
	assert.Contains(t, s.Banner(), "Mathematica")
	assert.NotContains(t, s.Banner(), "In[")
	assert.Greater(t, s.Pid(), 0)
}

func TestRequest_Sequencing(t *testing.T) {
	s := startFake(t)
	ctx := context.Background()

	exchanges := []struct{ in, out string }{
		{"D[Sin[x], x]", "Cos[x]"},
		{"Integrate[x, x]", "Times[Rational[1, 2], Power[x, 2]]"},
		{"Integrate[x^2, {x, -1, 1}]", "Rational[2, 3]"},
		{"I*I", "-1"},
		{"Foo[x]", "Foo[x]"},
	}
	for _, ex := range exchanges {
		got, err := s.Request(ctx, ex.in)
		require.NoError(t, err, ex.in)
		assert.Equal(t, ex.out, got, ex.in)
	}
}

func TestRequest_WrappedOutput(t *testing.T) {
	s := startFake(t)

	got, err := s.Request(context.Background(), "Expand[(1 + x)^10]")
	require.NoError(t, err)
	assert.Equal(t, fakekernel.DefaultScript()["Expand[(1 + x)^10]"].Out, got)
	assert.NotContains(t, got, ">")
}

func TestRequest_MessageBeforeValue(t *testing.T) {
	s := startFake(t)

	got, err := s.Request(context.Background(), "1/0")
	require.NoError(t, err)
	assert.Equal(t, "ComplexInfinity", got)
}

func TestRequest_NoOutputKeepsSessionUsable(t *testing.T) {
	s := startFake(t)
	ctx := context.Background()

	_, err := s.Request(ctx, "Print[1]")
	assert.ErrorIs(t, err, kernel.ErrProtocol)
	assert.ErrorIs(t, err, kernel.ErrNoOutput)

	got, err := s.Request(ctx, "D[Sin[x], x]")
	require.NoError(t, err)
	assert.Equal(t, "Cos[x]", got)
}

func TestRequest_CancelledContext(t *testing.T) {
	s := startFake(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Request(ctx, "I*I")
	assert.ErrorIs(t, err, context.Canceled)

	got, err := s.Request(context.Background(), "I*I")
	require.NoError(t, err)
	assert.Equal(t, "-1", got)
}

func TestClose_Idempotent(t *testing.T) {
	s, err := kernel.Start(context.Background(), fake(fakekernel.ModeServe)...)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	_, err = s.Request(context.Background(), "I*I")
	assert.ErrorIs(t, err, kernel.ErrClosed)
}

func TestStart_NoPrompt(t *testing.T) {
	_, err := kernel.Start(context.Background(), fake(fakekernel.ModeMute)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrStartup)
	assert.Contains(t, err.Error(), "Mathematica")
}

func TestStart_MissingProgram(t *testing.T) {
	_, err := kernel.Start(context.Background(), kernel.WithProgram("/nonexistent/wolfram"))
	assert.ErrorIs(t, err, kernel.ErrStartup)
}

func TestRequest_ProcessExited(t *testing.T) {
	s, err := kernel.Start(context.Background(), fake(fakekernel.ModeCrash)...)
	require.NoError(t, err)

	_, err = s.Request(context.Background(), "I*I")
	assert.ErrorIs(t, err, kernel.ErrProcessExited)

	_, err = s.Request(context.Background(), "I*I")
	assert.ErrorIs(t, err, kernel.ErrProcessExited)

	err = s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestSession_PTY(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pseudo-terminals are not available on windows")
	}
	s := startFake(t, kernel.WithPTY(true))

	got, err := s.Request(context.Background(), "D[Sin[x], x]")
	require.NoError(t, err)
	assert.Equal(t, "Cos[x]", got)

	got, err = s.Request(context.Background(), "Expand[(1 + x)^10]")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Plus[1, Times[10, x]"), got)
	assert.NoError(t, s.Close())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := kernel.NewMetrics(reg)

	s, err := kernel.Start(context.Background(), fake(fakekernel.ModeServe, kernel.WithMetrics(m))...)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Request(ctx, "I*I")
	require.NoError(t, err)
	_, err = s.Request(ctx, "D[Sin[x], x]")
	require.NoError(t, err)
	_, err = s.Request(ctx, "Print[1]")
	require.Error(t, err)

	expected := `
# HELP mathlink_kernel_requests_total Kernel request/reply exchanges by outcome.
# TYPE mathlink_kernel_requests_total counter
mathlink_kernel_requests_total{outcome="ok"} 2
mathlink_kernel_requests_total{outcome="protocol_error"} 1
# HELP mathlink_kernel_sessions Kernel processes currently running.
# TYPE mathlink_kernel_sessions gauge
mathlink_kernel_sessions 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"mathlink_kernel_requests_total", "mathlink_kernel_sessions"))
	n, err := testutil.GatherAndCount(reg, "mathlink_kernel_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Close())
	closed := `
# HELP mathlink_kernel_sessions Kernel processes currently running.
# TYPE mathlink_kernel_sessions gauge
mathlink_kernel_sessions 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(closed), "mathlink_kernel_sessions"))
}
