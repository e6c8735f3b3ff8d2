package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/rglonek/go-flags"
)

const completionBash = `_sqlctl() {
    # All arguments except the first one
    args=("${COMP_WORDS[@]:1:$COMP_CWORD}")

    # Only split on newlines
    local IFS=$'\n'

    # Call completion (note that the first element of COMP_WORDS is
    # the executable itself)
    COMPREPLY=($(GO_FLAGS_COMPLETION=1 ${COMP_WORDS[0]} "${args[@]}"))
    return 0
}

complete -F _sqlctl sqlctl
`

type CompletionBashCmd struct {
	NoInstall  bool           `short:"n" long:"no-install" description:"Print the completion script to screen instead of installing it in .bashrc"`
	CustomPath flags.Filename `short:"c" long:"custom-path" description:"Install the script in a custom location"`
	Help       HelpCmd        `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *CompletionBashCmd) Execute(args []string) error {
	cmd := []string{"completion", "bash"}
	system, err := Initialize(&Init{}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	if c.NoInstall {
		fmt.Println("--- SCRIPT START ---")
		fmt.Println(completionBash)
		fmt.Println("--- RC FILE .bashrc CONTENTS ---")
		fmt.Println("source ${HOME}/.config/sqlctl/completion.bash")
		fmt.Println("--- END ---")
		return nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	script := string(c.CustomPath)
	if script == "" {
		root, err := SqlctlRootDir()
		if err != nil {
			return Error(err, system, cmd, c, args)
		}
		script = filepath.Join(root, "completion.bash")
	}
	err = c.Install(script, filepath.Join(h, ".bashrc"))
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	fmt.Println("OK, completion file written\nTo initialize, reload your shell or run: source ~/.bashrc")
	return nil
}

// Install writes the script and sources it from bashrc unless already sourced.
func (c *CompletionBashCmd) Install(script string, bashrc string) error {
	if err := os.MkdirAll(filepath.Dir(script), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(script, []byte(completionBash), 0755); err != nil {
		return err
	}
	fd, err := os.OpenFile(bashrc, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer fd.Close()
	contents, err := io.ReadAll(fd)
	if err != nil {
		return err
	}
	source := "\n# sqlctl bash completion\nsource " + script + "\n"
	if strings.Contains(string(contents), source) {
		return nil
	}
	_, err = fd.Write([]byte(source))
	return err
}
