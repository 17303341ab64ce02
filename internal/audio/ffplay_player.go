package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

// FFPlayPlayer plays audio files through an ffplay subprocess.
type FFPlayPlayer struct {
	command string
}

func NewFFPlayPlayer(command string) *FFPlayPlayer {
	if command == "" {
		command = "ffplay"
	}
	return &FFPlayPlayer{command: command}
}

func (p *FFPlayPlayer) Play(ctx context.Context, artifact domain.AudioArtifact) (ports.Playback, error) {
	if artifact.Path == "" {
		return nil, errors.New("no audio file to play")
	}
	path, err := exec.LookPath(p.command)
	if err != nil {
		return nil, fmt.Errorf("audio player %q not found: %w", p.command, ports.ErrBackendUnavailable)
	}

	args := []string{
		"-nodisp",
		"-autoexit",
		"-hide_banner",
		"-loglevel", "warning",
		artifact.Path,
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", p.command, err)
	}

	playback := &ffplayPlayback{
		process: cmd.Process,
		stderr:  &stderr,
		done:    make(chan struct{}),
	}
	go func() {
		playback.waitErr = cmd.Wait()
		close(playback.done)
	}()
	return playback, nil
}

type ffplayPlayback struct {
	process *os.Process
	stderr  *bytes.Buffer

	done    chan struct{}
	waitErr error

	stopOnce sync.Once
	stopErr  error
}

func (p *ffplayPlayback) Done() <-chan struct{} {
	return p.done
}

// Err reports how the player exited once Done is closed.
func (p *ffplayPlayback) Err() error {
	select {
	case <-p.done:
	default:
		return nil
	}
	if p.waitErr != nil && p.stderr.Len() > 0 {
		return fmt.Errorf("%w: %s", p.waitErr, stringsTrimSpaceSafe(p.stderr.String()))
	}
	return p.waitErr
}

func (p *ffplayPlayback) Stop() error {
	p.stopOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}

		if p.process != nil {
			_ = p.process.Signal(os.Interrupt)
		}

		select {
		case <-p.done:
		case <-time.After(1200 * time.Millisecond):
			if p.process != nil {
				_ = p.process.Kill()
			}
			<-p.done
		}
		p.stopErr = normalizeStopErr(p.waitErr)
	})

	return p.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func stringsTrimSpaceSafe(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
