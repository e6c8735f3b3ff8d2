package cmd

type Commands struct {
	Sql        SqlCmd        `command:"sql" subcommands-optional:"true" description:"Show or change SQL server and database settings"`
	Config     ConfigCmd     `command:"config" subcommands-optional:"true" description:"Show or change sqlctl configuration"`
	Completion CompletionCmd `command:"completion" subcommands-optional:"true" description:"Install shell completion scripts"`
	Version    VersionCmd    `command:"version" subcommands-optional:"true" description:"Print sqlctl version"`
	Help       HelpCmd       `command:"help" subcommands-optional:"true" description:"Print help"`
}
