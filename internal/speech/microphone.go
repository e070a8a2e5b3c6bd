package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// DefaultCaptureCommand records mono 16 kHz signed 16-bit PCM to stdout with ALSA.
var DefaultCaptureCommand = []string{"arecord", "-q", "-t", "raw", "-f", "S16_LE", "-r", "16000", "-c", "1"}

// CommandSource reads microphone audio from an external recorder process.
type CommandSource struct {
	command []string
}

// NewCommandSource uses command, or DefaultCaptureCommand when command is empty.
func NewCommandSource(command []string) *CommandSource {
	if len(command) == 0 {
		command = DefaultCaptureCommand
	}
	return &CommandSource{command: append([]string(nil), command...)}
}

// ParseCommand splits a whitespace separated command line.
func ParseCommand(raw string) []string {
	return strings.Fields(raw)
}

func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s == nil || len(s.command) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stderr = io.Discard
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open recorder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recorder %q: %w", s.command[0], err)
	}
	return &commandStream{cmd: cmd, stdout: stdout}, nil
}

type commandStream struct {
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	once    sync.Once
	waitErr error
}

// Read returns io.EOF only when the recorder exited cleanly; a failed recorder
// surfaces as a read error.
func (c *commandStream) Read(p []byte) (int, error) {
	n, err := c.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		if waitErr := c.wait(); waitErr != nil {
			return n, fmt.Errorf("recorder exited: %w", waitErr)
		}
	}
	return n, err
}

// Close stops the recorder and reaps it.
func (c *commandStream) Close() error {
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	_ = c.wait()
	return nil
}

func (c *commandStream) wait() error {
	c.once.Do(func() {
		c.waitErr = c.cmd.Wait()
	})
	return c.waitErr
}
