package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sqlctl/sqlctl/cli/cmd"
	"github.com/sqlctl/sqlctl/pkg/utils/shutdown"
)

func main() {
	exitCode := 0
	err := run(os.Args[1:])
	if err != nil {
		if !errors.Is(err, cmd.ErrExecuteError) {
			fmt.Println(err)
		}
		exitCode = 1
	}
	shutdown.WaitJobs()
	if failed := cmd.FailedJobs(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "background jobs failed: %s\n", strings.Join(failed, ", "))
		exitCode = 1
	}
	os.Exit(exitCode)
}

func run(args []string) error {
	if len(args) == 0 {
		args = []string{"help"}
	}
	err := createHomeDir()
	if err != nil {
		return err
	}

	// first init call: used to run the correct Execute function only
	_, err = cmd.Initialize(&cmd.Init{
		RunExecuteFunction: true,
	}, nil, nil, args...)
	return err
}

func createHomeDir() error {
	home, err := cmd.SqlctlRootDir()
	if err != nil {
		return fmt.Errorf("could not determine user's home directory: %s", err)
	}
	if _, err := os.Stat(home); err != nil {
		err = os.MkdirAll(home, 0700)
		if err != nil {
			return fmt.Errorf("could not create %s, configuration files may not be available: %s", home, err)
		}
	}
	return nil
}
