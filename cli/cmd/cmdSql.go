package cmd

type SqlCmd struct {
	Server   SqlServerCmd   `command:"server" subcommands-optional:"true" description:"SQL server settings"`
	Database SqlDatabaseCmd `command:"database" subcommands-optional:"true" description:"SQL database settings"`
	Help     HelpCmd        `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}

type SqlServerCmd struct {
	AutoTuning SqlServerAutoTuningCmd `command:"auto-tuning" subcommands-optional:"true" description:"Show or change automatic tuning of a server"`
	Help       HelpCmd                `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlServerCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}

type SqlServerAutoTuningCmd struct {
	Get  SqlServerAutoTuningGetCmd `command:"get" subcommands-optional:"true" description:"Show the automatic tuning configuration of a server"`
	Set  SqlServerAutoTuningSetCmd `command:"set" subcommands-optional:"true" description:"Change the automatic tuning configuration of a server"`
	Help HelpCmd                   `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlServerAutoTuningCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}

type SqlDatabaseCmd struct {
	AutoTuning SqlDatabaseAutoTuningCmd `command:"auto-tuning" subcommands-optional:"true" description:"Show or change automatic tuning of a database"`
	Help       HelpCmd                  `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlDatabaseCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}

type SqlDatabaseAutoTuningCmd struct {
	Get  SqlDatabaseAutoTuningGetCmd `command:"get" subcommands-optional:"true" description:"Show the automatic tuning configuration of a database"`
	Set  SqlDatabaseAutoTuningSetCmd `command:"set" subcommands-optional:"true" description:"Change the automatic tuning configuration of a database"`
	Help HelpCmd                     `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlDatabaseAutoTuningCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}
