package cmd

import (
	"fmt"
	"io"
	"os"
)

type VersionCmd struct {
	Help HelpCmd `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *VersionCmd) Execute(args []string) error {
	cmd := []string{"version"}
	system, err := Initialize(&Init{}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	return Error(c.PrintVersion(os.Stdout), system, cmd, c, args)
}

func (c *VersionCmd) PrintVersion(out io.Writer) error {
	_, _, _, versionString := GetSqlctlVersion()
	_, err := fmt.Fprintln(out, versionString)
	return err
}
