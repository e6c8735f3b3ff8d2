package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sqlctl/sqlctl/pkg/config"
	"github.com/sqlctl/sqlctl/pkg/utils/printer"
)

type ConfigEnvVarsCmd struct {
	Output OutputFlags `group:"Output"`
	Help   HelpCmd     `command:"help" subcommands-optional:"true" description:"Print help"`
}

type envVar struct {
	Key         string `json:"key" yaml:"key"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

var secretEnvVars = []string{"SQLCTL_CLIENT_SECRET", "SQLCTL_ACCESS_TOKEN"}

func (c *ConfigEnvVarsCmd) Execute(args []string) error {
	cmd := []string{"config", "env-vars"}
	system, err := Initialize(&Init{}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	return Error(c.PrintEnvVars(system, os.Stdout), system, cmd, c, args)
}

func envVarList() []envVar {
	list := []envVar{
		{Key: "SQLCTL_HOME", Description: "If set, will override the default ~/.config/sqlctl home directory"},
		{Key: "SQLCTL_LOG_LEVEL", Description: "0=NONE,1=CRITICAL,2=ERROR,3=WARN,4=INFO,5=DEBUG,6=DETAIL"},
		{Key: "SQLCTL_LOG_FILE", Description: "If set, logs are also written to the given file"},
		{Key: "SQLCTL_CONFIG_FILE", Description: "If set, sqlctl will read the given defaults config file instead of $SQLCTL_HOME/conf"},
		{Key: "SQLCTL_PROFILE_FILE", Description: "If set, sqlctl will read the given connection profile instead of $SQLCTL_HOME/profile.yaml"},
		{Key: "SQLCTL_PAGER", Description: "Pager command used with --pager, takes precedence over PAGER"},
	}
	for _, v := range config.EnvVars {
		list = append(list, envVar{Key: v[0], Description: v[1]})
	}
	for i := range list {
		list[i].Value = os.Getenv(list[i].Key)
		for _, secret := range secretEnvVars {
			if list[i].Key == secret && list[i].Value != "" {
				list[i].Value = "****"
			}
		}
	}
	return list
}

func (c *ConfigEnvVarsCmd) PrintEnvVars(system *System, out io.Writer) error {
	list := envVarList()
	return c.Output.Render(system, out, &rendered{
		Title:  "ENV VARS",
		Data:   list,
		Header: table.Row{"Key", "Value", "Description"},
		Rows: func(t *printer.TableWriter) []table.Row {
			rows := []table.Row{}
			for _, v := range list {
				rows = append(rows, table.Row{v.Key, v.Value, v.Description})
			}
			return rows
		},
		Text: func(out io.Writer) {
			for _, v := range list {
				fmt.Fprintf(out, "%s=%s\n", v.Key, v.Value)
			}
		},
	})
}
