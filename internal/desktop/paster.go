package desktop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"linguaclip/internal/ports"
)

// CommandPaster sends the platform paste shortcut to the focused window by
// running a keystroke helper.
type CommandPaster struct {
	command string
	args    []string
}

// NewCommandPaster uses commandLine when set, otherwise the default helper
// for the current platform and session.
func NewCommandPaster(commandLine string) *CommandPaster {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = defaultPasteCommand(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "")
	}
	if len(fields) == 0 {
		return &CommandPaster{}
	}
	return &CommandPaster{command: fields[0], args: fields[1:]}
}

func (p *CommandPaster) Paste(ctx context.Context) error {
	if p.command == "" {
		return fmt.Errorf("no paste helper for %s: %w", runtime.GOOS, ports.ErrBackendUnavailable)
	}
	path, err := exec.LookPath(p.command)
	if err != nil {
		return fmt.Errorf("paste helper %q not found: %w", p.command, ports.ErrBackendUnavailable)
	}

	cmd := exec.CommandContext(ctx, path, p.args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("paste helper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("paste helper failed: %w", err)
	}
	return nil
}

func defaultPasteCommand(goos string, wayland bool) []string {
	switch goos {
	case "darwin":
		return []string{"osascript", "-e", `tell application "System Events" to keystroke "v" using command down`}
	case "windows":
		return []string{"powershell", "-NoProfile", "-Command",
			`Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('^v')`}
	case "linux", "freebsd", "openbsd":
		if wayland {
			return []string{"wtype", "-M", "ctrl", "v", "-m", "ctrl"}
		}
		return []string{"xdotool", "key", "--clearmodifiers", "ctrl+v"}
	default:
		return nil
	}
}
