package kernel

import (
	"log/slog"

	"github.com/njchilds90/mathlink/internal/logging"
)

// DefaultProgram is the kernel executable looked up on PATH.
const DefaultProgram = "wolfram"

// DefaultArgs puts the kernel in plain-text terminal mode.
var DefaultArgs = []string{"-rawterm"}

type config struct {
	program string
	args    []string
	env     []string
	dir     string
	pty     bool
	logger  *slog.Logger
	metrics *Metrics
}

func defaultConfig() config {
	return config{
		program: DefaultProgram,
		args:    append([]string(nil), DefaultArgs...),
		logger:  logging.NewNop(),
	}
}

// Option configures Start.
type Option func(*config)

// WithProgram sets the executable name or path.
func WithProgram(program string) Option {
	return func(c *config) {
		if program != "" {
			c.program = program
		}
	}
}

// WithArgs replaces the command-line arguments (default -rawterm).
// WithArgs() with no arguments starts the program without any.
func WithArgs(args ...string) Option {
	return func(c *config) {
		c.args = append([]string(nil), args...)
	}
}

// WithEnv adds KEY=VALUE entries to the inherited environment.
func WithEnv(kv ...string) Option {
	return func(c *config) {
		c.env = append(c.env, kv...)
	}
}

// WithDir sets the working directory of the process.
func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// WithPTY runs the process on a pseudo-terminal instead of pipes. Some
// kernels only print prompts when attached to a terminal.
func WithPTY(enabled bool) Option {
	return func(c *config) {
		c.pty = enabled
	}
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records exchanges and live sessions in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
