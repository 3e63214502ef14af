package kernel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

// Session owns one kernel process.
type Session struct {
	cfg     config
	log     *slog.Logger
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	output  io.Closer
	tty     *os.File
	replies *replyReader
	banner  string

	exited   bool
	closed   bool
	closeErr error
}

// Start spawns the kernel and waits for its first prompt. Cancelling ctx
// kills the process, so ctx must outlive the Session. No timeout is applied
// here; the caller supervises a kernel that never prompts.
func Start(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.CommandContext(ctx, cfg.program, cfg.args...)
	cmd.Dir = cfg.dir
	if len(cfg.env) > 0 {
		cmd.Env = append(cmd.Environ(), cfg.env...)
	}

	s := &Session{
		cfg: cfg,
		log: cfg.logger.With("component", "kernel", "program", cfg.program),
		cmd: cmd,
	}

	var err error
	if cfg.pty {
		err = s.spawnPTY()
	} else {
		err = s.spawnPipes()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStartup, cfg.program, err)
	}
	s.log.Debug("kernel spawned", "pid", cmd.Process.Pid, "pty", cfg.pty)

	banner, err := s.replies.next()
	if err != nil {
		s.kill()
		return nil, fmt.Errorf("%w: %s exited before its first prompt: %v (output %q)",
			ErrStartup, cfg.program, err, clip(banner, 200))
	}
	s.banner = strings.TrimSpace(strings.ReplaceAll(banner, "\r", ""))
	cfg.metrics.sessionStarted()
	s.log.Debug("kernel ready")
	return s, nil
}

func (s *Session) spawnPipes() error {
	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return err
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return err
	}
	// Messages go to stderr and must land in the same block as the reply.
	s.cmd.Stdout = pw
	s.cmd.Stderr = pw
	if err := s.cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return err
	}
	// The child holds its own copy; ours must go for reads to see EOF.
	_ = pw.Close()

	s.stdin = stdin
	s.output = pr
	s.replies = newReplyReader(pr)
	return nil
}

func (s *Session) spawnPTY() error {
	f, err := pty.Start(s.cmd)
	if err != nil {
		return err
	}
	s.tty = f
	s.stdin = f
	s.output = f
	s.replies = newReplyReader(f)
	return nil
}

// Banner is the text the kernel printed before its first prompt.
func (s *Session) Banner() string { return s.banner }

// Pid returns the kernel's process id.
func (s *Session) Pid() int { return s.cmd.Process.Pid }

// Request sends FullForm[text] and returns the reply payload with
// continuation markers removed and whitespace collapsed. ctx is checked
// before sending; an exchange in flight runs to the next prompt.
//
// A reply without a value (a message, or a Print with no result) returns a
// *ProtocolError; the session stays usable. If the process dies the error
// matches ErrProcessExited and every later Request fails the same way.
func (s *Session) Request(ctx context.Context, text string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if s.exited {
		return "", ErrProcessExited
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	if _, err := io.WriteString(s.stdin, "FullForm["+text+"]\n"); err != nil {
		return "", s.lost(start, err, "")
	}
	block, err := s.replies.next()
	if err != nil {
		return "", s.lost(start, err, block)
	}

	payload, err := extractPayload(block)
	elapsed := time.Since(start)
	if err != nil {
		s.cfg.metrics.observe(outcomeProtocol, elapsed)
		s.log.Warn("kernel reply without value", "request", text, "error", err)
		return "", err
	}
	s.cfg.metrics.observe(outcomeOK, elapsed)
	s.log.Debug("kernel exchange", "request", text, "reply", payload, "duration", elapsed)
	return payload, nil
}

func (s *Session) lost(start time.Time, err error, block string) error {
	s.exited = true
	s.cfg.metrics.observe(outcomeExited, time.Since(start))
	s.log.Warn("kernel process lost", "error", err)
	return fmt.Errorf("%w: %v (output %q)", ErrProcessExited, err, clip(block, 200))
}

// Close sends Quit and waits for the process to exit. Calling Close again
// returns the first result.
func (s *Session) Close() error {
	if s.closed {
		return s.closeErr
	}
	s.closed = true
	defer s.cfg.metrics.sessionClosed()

	// The process may already be gone; Wait reports that.
	_, _ = io.WriteString(s.stdin, "Quit\n")
	if s.tty == nil {
		_ = s.stdin.Close()
	}
	err := s.cmd.Wait()
	_ = s.output.Close()

	if err != nil {
		s.closeErr = fmt.Errorf("kernel: wait: %w", err)
		s.log.Warn("kernel exited uncleanly", "error", err)
		return s.closeErr
	}
	s.log.Debug("kernel closed")
	return nil
}

func (s *Session) kill() {
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
	_ = s.output.Close()
}
