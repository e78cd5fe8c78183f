package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// writeClipboard is swapped out in tests.
var writeClipboard = copyToClipboard

// copyToClipboard pipes text into the platform clipboard tool.
func copyToClipboard(text string) error {
	name, args, err := clipboardTool()
	if err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func clipboardTool() (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "pbcopy", nil, nil
	case "linux":
		for _, t := range []struct {
			name string
			args []string
		}{
			{"wl-copy", nil},
			{"xclip", []string{"-selection", "clipboard"}},
			{"xsel", []string{"--clipboard", "--input"}},
		} {
			if _, err := exec.LookPath(t.name); err == nil {
				return t.name, t.args, nil
			}
		}
		return "", nil, fmt.Errorf("no clipboard tool: install wl-clipboard, xclip or xsel")
	}
	return "", nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
}
