package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sqlctl/sqlctl/pkg/config"
	"gopkg.in/yaml.v3"
)

type ConfigProfileCmd struct {
	Set       []string `long:"set" description:"Set KEY=VALUE in the profile file; can be specified multiple times" no-default:"true"`
	Effective bool     `short:"e" long:"effective" description:"Show the profile as resolved with SQLCTL_* environment variables applied" no-default:"true"`
	Help      HelpCmd  `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *ConfigProfileCmd) Execute(args []string) error {
	cmd := []string{"config", "profile"}
	system, err := Initialize(&Init{}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	profileFile, err := ProfileFileName()
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	return Error(c.ConfigProfile(system, profileFile, os.Stdout), system, cmd, c, args)
}

// ConfigProfile applies any --set values to profileFile and prints the
// resulting profile with secrets masked.
func (c *ConfigProfileCmd) ConfigProfile(system *System, profileFile string, out io.Writer) error {
	if len(c.Set) > 0 {
		p, err := config.MakeProfile(true, profileFile, false)
		if err != nil {
			return err
		}
		for _, kv := range c.Set {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --set %q, expected KEY=VALUE", kv)
			}
			if err := p.Set(strings.TrimSpace(key), value); err != nil {
				return err
			}
			system.Logger.Debug("Set profile key %s", key)
		}
		if err := p.Save(profileFile); err != nil {
			return fmt.Errorf("could not save profile: %w", err)
		}
		system.Logger.Info("Saved profile to %s", profileFile)
	}
	p, err := config.MakeProfile(true, profileFile, c.Effective)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(p.Masked()); err != nil {
		return err
	}
	return enc.Close()
}
