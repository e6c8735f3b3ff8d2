package cmd

type CompletionCmd struct {
	Bash CompletionBashCmd `command:"bash" subcommands-optional:"true" description:"Install completion script for bash"`
	Help HelpCmd           `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *CompletionCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}
