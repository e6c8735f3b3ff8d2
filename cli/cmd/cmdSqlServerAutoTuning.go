package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sqlctl/sqlctl/pkg/autotuning"
)

type SqlServerAutoTuningGetCmd struct {
	Target ServerTargetFlags `group:"Target"`
	Output OutputFlags       `group:"Output"`
	Help   HelpCmd           `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlServerAutoTuningGetCmd) Execute(args []string) error {
	cmd := []string{"sql", "server", "auto-tuning", "get"}
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

func (c *SqlServerAutoTuningGetCmd) GetAutoTuning(ctx context.Context, system *System, stdin io.Reader, out io.Writer) ([]*autotuning.ServerTuning, error) {
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
	items := []*autotuning.ServerTuning{}
	for _, t := range targets {
		system.Logger.Debug("Getting automatic tuning of server %s", t.String())
		m, err := adapter.GetServerSettings(ctx, t.ResourceGroupName, t.ServerName)
		if err != nil {
			return items, fmt.Errorf("%s: %w", t.String(), err)
		}
		items = append(items, m)
	}
	return items, c.Output.Render(system, out, serversRendered(items))
}

type SqlServerAutoTuningSetCmd struct {
	Target            ServerTargetFlags `group:"Target"`
	DesiredState      TypeServerMode    `long:"desired-state" description:"Automatic tuning mode: Custom, Auto or Unspecified; Unspecified keeps the current mode" no-default:"true"`
	ForceLastGoodPlan TypeOptionState   `long:"force-last-good-plan" description:"Desired state of the force last good plan option: On, Off or Default" no-default:"true"`
	CreateIndex       TypeOptionState   `long:"create-index" description:"Desired state of the create index option: On, Off or Default" no-default:"true"`
	DropIndex         TypeOptionState   `long:"drop-index" description:"Desired state of the drop index option: On, Off or Default" no-default:"true"`
	DryRun            bool              `long:"dry-run" description:"Print the requests that would be sent, without sending them" no-default:"true"`
	AsJob             bool              `long:"as-job" description:"Run each update as a background job and print the job IDs" no-default:"true"`
	Output            OutputFlags       `group:"Output"`
	Help              HelpCmd           `command:"help" subcommands-optional:"true" description:"Print help"`
}

func (c *SqlServerAutoTuningSetCmd) Execute(args []string) error {
	cmd := []string{"sql", "server", "auto-tuning", "set"}
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

func (c *SqlServerAutoTuningSetCmd) input() *autotuning.ServerTuningInput {
	return &autotuning.ServerTuningInput{
		DesiredState:                  autotuning.ServerMode(c.DesiredState),
		ForceLastGoodPlanDesiredState: autotuning.OptionDesiredState(c.ForceLastGoodPlan),
		CreateIndexDesiredState:       autotuning.OptionDesiredState(c.CreateIndex),
		DropIndexDesiredState:         autotuning.OptionDesiredState(c.DropIndex),
	}
}

// SetAutoTuning reads the current configuration of each target, merges the
// given values into it and sends it back. With AsJob it returns no results.
func (c *SqlServerAutoTuningSetCmd) SetAutoTuning(ctx context.Context, system *System, stdin io.Reader, out io.Writer) ([]*autotuning.ServerTuning, error) {
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
			m, err := adapter.GetServerSettings(ctx, t.ResourceGroupName, t.ServerName)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.String(), err)
			}
			input.Apply(m)
			requests = append(requests, dryRunRequest{
				Method:  "PATCH",
				Target:  t,
				Request: autotuning.ServerUpdateRequest(m),
			})
		}
		o := dryRunOutput(c.Output)
		return nil, o.Render(system, out, dryRunRendered(requests))
	}

	if c.AsJob {
		w := &lockedWriter{w: out}
		for _, t := range targets {
			t := t
			id, err := system.RunJob("set automatic tuning of server "+t.String(), func(ctx context.Context) error {
				m, err := c.setOne(ctx, system, adapter, input, t)
				if err != nil {
					return err
				}
				o := c.Output
				o.Pager = false
				buf := &bytes.Buffer{}
				if err := o.Render(system, buf, serversRendered([]*autotuning.ServerTuning{m})); err != nil {
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

	items := []*autotuning.ServerTuning{}
	for _, t := range targets {
		m, err := c.setOne(ctx, system, adapter, input, t)
		if err != nil {
			return items, err
		}
		items = append(items, m)
	}
	return items, c.Output.Render(system, out, serversRendered(items))
}

func (c *SqlServerAutoTuningSetCmd) setOne(ctx context.Context, system *System, adapter *autotuning.Adapter, input *autotuning.ServerTuningInput, t target) (*autotuning.ServerTuning, error) {
	m, err := adapter.GetServerSettings(ctx, t.ResourceGroupName, t.ServerName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	input.Apply(m)
	system.Logger.Info("Updating automatic tuning of server %s", t.String())
	m, err = adapter.UpdateServerSettings(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	return m, nil
}
