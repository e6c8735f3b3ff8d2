package cmd

type ConfigCmd struct {
	Defaults ConfigDefaultsCmd `command:"defaults" subcommands-optional:"true" description:"Show or change defaults in the configuration file"`
	Profile  ConfigProfileCmd  `command:"profile" subcommands-optional:"true" description:"Show or change the connection profile"`
	EnvVars  ConfigEnvVarsCmd  `command:"env-vars" subcommands-optional:"true" description:"Show the environment variables and how they are set"`
	Help     HelpCmd           `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *ConfigCmd) Execute(args []string) error {
	c.Help.Execute(args)
	return nil
}
