// Package pager pipes output through an external pager.
package pager

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

type Pager struct {
	cmd       *exec.Cmd
	writer    io.WriteCloser
	hasColors bool
}

// New prepares a pager writing to out. SQLCTL_PAGER or PAGER select the
// command, otherwise `less -R -S` or `more` is used.
func New(out io.Writer) (*Pager, error) {
	cmd, hasColors, err := pagerCommand()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = out
	cmd.Stderr = out
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	return &Pager{
		cmd:       cmd,
		writer:    pipe,
		hasColors: hasColors,
	}, nil
}

// HasColors is true for a nil pager, as output then goes straight to the terminal.
func (p *Pager) HasColors() bool {
	if p == nil {
		return true
	}
	return p.hasColors
}

func (p *Pager) Start() error {
	return p.cmd.Start()
}

func (p *Pager) Write(data []byte) (int, error) {
	return p.writer.Write(data)
}

// Close closes the pager input and waits for the user to quit it.
func (p *Pager) Close() error {
	_ = p.writer.Close()
	return p.cmd.Wait()
}

func pagerCommand() (*exec.Cmd, bool, error) {
	for _, env := range []string{"SQLCTL_PAGER", "PAGER"} {
		fields := strings.Fields(os.Getenv(env))
		if len(fields) == 0 {
			continue
		}
		path, err := exec.LookPath(fields[0])
		if err != nil {
			continue
		}
		cmd := exec.Command(path, fields[1:]...)
		setCmdParams(cmd)
		return cmd, strings.Contains(filepath.Base(path), "less") && hasFlag(fields[1:], "-R"), nil
	}

	if path, err := exec.LookPath("less"); err == nil {
		return exec.Command(path, "-R", "-S"), true, nil
	}

	if runtime.GOOS == "windows" {
		candidates := []string{
			`C:\Program Files\Git\usr\bin\less.exe`,
			`C:\Program Files (x86)\Git\usr\bin\less.exe`,
			`C:\ProgramData\chocolatey\bin\less.exe`,
			`C:\msys64\usr\bin\less.exe`,
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, `scoop\apps\less\current\less.exe`))
		}
		for _, path := range candidates {
			if _, err := os.Stat(path); err == nil {
				cmd := exec.Command(path, "-R", "-S")
				setCmdParams(cmd)
				return cmd, true, nil
			}
		}
	}

	if path, err := exec.LookPath("more"); err == nil {
		return exec.Command(path), false, nil
	}
	return nil, false, errors.New("no pager found: set SQLCTL_PAGER or install less")
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || (strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") && strings.Contains(a, flag[1:])) {
			return true
		}
	}
	return false
}
