package speech

import (
	"errors"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"

	"horse.fit/vaani/internal/failure"
)

// DefaultPlayerCommand returns the opener for goos. The file path is appended.
func DefaultPlayerCommand(goos string) []string {
	switch goos {
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	case "darwin":
		return []string{"afplay"}
	default:
		return []string{"xdg-open"}
	}
}

// CommandPlayer starts an external player and does not wait for it.
type CommandPlayer struct {
	command []string
	start   func(cmd *exec.Cmd) error
	logger  zerolog.Logger
}

// NewCommandPlayer uses command, or the platform default when command is empty.
func NewCommandPlayer(command []string, logger zerolog.Logger) *CommandPlayer {
	if len(command) == 0 {
		command = DefaultPlayerCommand(runtime.GOOS)
	}
	return &CommandPlayer{
		command: append([]string(nil), command...),
		start:   startDetached,
		logger:  logger,
	}
}

func (p *CommandPlayer) Play(path string) error {
	if path == "" {
		return failure.Wrap(failure.PlaybackFailure, errors.New("artifact path is empty"), "Nothing to play.")
	}
	args := append(append([]string(nil), p.command[1:]...), path)
	cmd := exec.Command(p.command[0], args...)
	if err := p.start(cmd); err != nil {
		return failure.Wrap(failure.PlaybackFailure, err, "Could not start audio playback.")
	}
	p.logger.Debug().Str("player", p.command[0]).Str("path", path).Msg("playback started")
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
