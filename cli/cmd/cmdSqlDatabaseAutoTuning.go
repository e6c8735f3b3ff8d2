package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sqlctl/sqlctl/pkg/autotuning"
)

type SqlDatabaseAutoTuningGetCmd struct {
	Target DatabaseTargetFlags `group:"Target"`
	Output OutputFlags         `group:"Output"`
	Help   HelpCmd             `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlDatabaseAutoTuningGetCmd) Execute(args []string) error {
	cmd := []string{"sql", "database", "auto-tuning", "get"}
	system, err := Initialize(&Init{LoadProfile: true}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	system.Logger.Info("Running %s", joinCmd(cmd))
	_, err = c.GetAutoTuning(context.Background(), system, os.Stdin, os.Stdout)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	system.Logger.Info("Done")
	return nil
}

func (c *SqlDatabaseAutoTuningGetCmd) GetAutoTuning(ctx context.Context, system *System, stdin io.Reader, out io.Writer) ([]*autotuning.DatabaseTuning, error) {
	if err := c.Output.Validate(); err != nil {
		return nil, err
	}
	targets, err := c.Target.targets(stdin)
	if err != nil {
		return nil, err
	}
	adapter, err := system.autoTuningAdapter(c.Target.Subscription)
	if err != nil {
		return nil, err
	}
	items := []*autotuning.DatabaseTuning{}
	for _, t := range targets {
		system.Logger.Debug("Getting automatic tuning of database %s", t.String())
		m, err := adapter.GetDatabaseSettings(ctx, t.ResourceGroupName, t.ServerName, t.DatabaseName)
		if err != nil {
			return items, fmt.Errorf("%s: %w", t.String(), err)
		}
		items = append(items, m)
	}
	return items, c.Output.Render(system, out, databasesRendered(items))
}

type SqlDatabaseAutoTuningSetCmd struct {
	Target            DatabaseTargetFlags `group:"Target"`
	DesiredState      TypeDatabaseMode    `long:"desired-state" description:"Automatic tuning mode: Inherit, Custom, Auto or Unspecified; Unspecified keeps the current mode" no-default:"true"`
	ForceLastGoodPlan TypeOptionState     `long:"force-last-good-plan" description:"Desired state of the force last good plan option: On, Off or Default" no-default:"true"`
	CreateIndex       TypeOptionState     `long:"create-index" description:"Desired state of the create index option: On, Off or Default" no-default:"true"`
	DropIndex         TypeOptionState     `long:"drop-index" description:"Desired state of the drop index option: On, Off or Default" no-default:"true"`
	DryRun            bool                `long:"dry-run" description:"Print the requests that would be sent, without sending them" no-default:"true"`
	AsJob             bool                `long:"as-job" description:"Run each update as a background job and print the job IDs" no-default:"true"`
	Output            OutputFlags         `group:"Output"`
	Help              HelpCmd             `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlDatabaseAutoTuningSetCmd) Execute(args []string) error {
	cmd := []string{"sql", "database", "auto-tuning", "set"}
	system, err := Initialize(&Init{LoadProfile: true}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	system.Logger.Info("Running %s", joinCmd(cmd))
	_, err = c.SetAutoTuning(context.Background(), system, os.Stdin, os.Stdout)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	if !c.AsJob {
		system.Logger.Info("Done")
	}
	return nil
}

func (c *SqlDatabaseAutoTuningSetCmd) input() *autotuning.DatabaseTuningInput {
	return &autotuning.DatabaseTuningInput{
		DesiredState:                  autotuning.DatabaseMode(c.DesiredState),
		ForceLastGoodPlanDesiredState: autotuning.OptionDesiredState(c.ForceLastGoodPlan),
		CreateIndexDesiredState:       autotuning.OptionDesiredState(c.CreateIndex),
		DropIndexDesiredState:         autotuning.OptionDesiredState(c.DropIndex),
	}
}

func (c *SqlDatabaseAutoTuningSetCmd) SetAutoTuning(ctx context.Context, system *System, stdin io.Reader, out io.Writer) ([]*autotuning.DatabaseTuning, error) {
	if err := c.Output.Validate(); err != nil {
		return nil, err
	}
	targets, err := c.Target.targets(stdin)
	if err != nil {
		return nil, err
	}
	adapter, err := system.autoTuningAdapter(c.Target.Subscription)
	if err != nil {
		return nil, err
	}
	input := c.input()
	if !input.HasChanges() {
		system.Logger.Warn("No changes requested, the current configuration will be sent back as-is")
	}

	if c.DryRun {
		if c.AsJob {
			system.Logger.Warn("--as-job is ignored with --dry-run")
		}
		requests := []dryRunRequest{}
		for _, t := range targets {
			m, err := adapter.GetDatabaseSettings(ctx, t.ResourceGroupName, t.ServerName, t.DatabaseName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.String(), err)
			}
			input.Apply(m)
			requests = append(requests, dryRunRequest{
				Method:  "PATCH",
				Target:  t,
				Request: autotuning.DatabaseUpdateRequest(m),
			})
		}
		o := dryRunOutput(c.Output)
		return nil, o.Render(system, out, dryRunRendered(requests))
	}

	if c.AsJob {
		w := &lockedWriter{w: out}
		for _, t := range targets {
			t := t
			id, err := system.RunJob("set automatic tuning of database "+t.String(), func(ctx context.Context) error {
				m, err := c.setOne(ctx, system, adapter, input, t)
				if err != nil {
					return err
				}
				o := c.Output
				o.Pager = false
				buf := &bytes.Buffer{}
				if err := o.Render(system, buf, databasesRendered([]*autotuning.DatabaseTuning{m})); err != nil {
					return err
				}
				_, err = w.Write(buf.Bytes())
				return err
			})
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(w, "%s %s\n", id, t.String())
		}
		return nil, nil
	}

	items := []*autotuning.DatabaseTuning{}
	for _, t := range targets {
		m, err := c.setOne(ctx, system, adapter, input, t)
		if err != nil {
			return items, err
		}
		items = append(items, m)
	}
	return items, c.Output.Render(system, out, databasesRendered(items))
}

func (c *SqlDatabaseAutoTuningSetCmd) setOne(ctx context.Context, system *System, adapter *autotuning.Adapter, input *autotuning.DatabaseTuningInput, t target) (*autotuning.DatabaseTuning, error) {
	m, err := adapter.GetDatabaseSettings(ctx, t.ResourceGroupName, t.ServerName, t.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	input.Apply(m)
	system.Logger.Info("Updating automatic tuning of database %s", t.String())
	m, err = adapter.UpdateDatabaseSettings(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	return m, nil
}
