package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	flags "github.com/rglonek/go-flags"
	"github.com/sqlctl/sqlctl/pkg/autotuning"
	"github.com/sqlctl/sqlctl/pkg/utils/printer"
)

type ServerTargetFlags struct {
	ResourceGroupName string         `short:"g" long:"resource-group" description:"Name of the resource group that contains the server"`
	ServerName        string         `short:"s" long:"server" description:"Name of the server"`
	Input             flags.Filename `short:"i" long:"input" description:"Read targets from a JSON file, or - for stdin; accepts the output of 'get -o json'. Flags take precedence over values read" no-default:"true"`
	Subscription      string         `long:"subscription" description:"Subscription ID; overrides the connection profile"`
}

type DatabaseTargetFlags struct {
	ResourceGroupName string         `short:"g" long:"resource-group" description:"Name of the resource group that contains the server"`
	ServerName        string         `short:"s" long:"server" description:"Name of the server"`
	DatabaseName      string         `short:"d" long:"database" description:"Name of the database"`
	Input             flags.Filename `short:"i" long:"input" description:"Read targets from a JSON file, or - for stdin; accepts the output of 'get -o json'. Flags take precedence over values read" no-default:"true"`
	Subscription      string         `long:"subscription" description:"Subscription ID; overrides the connection profile"`
}

// target identifies one resource; the JSON names match the model fields so
// that records produced by get can be read back.
type target struct {
	ResourceGroupName string `json:"resourceGroupName"`
	ServerName        string `json:"serverName"`
	DatabaseName      string `json:"databaseName,omitempty"`
}

func (t *target) validate(withDatabase bool) error {
	if t.ResourceGroupName == "" {
		return errors.New("resource group name is required (-g/--resource-group)")
	}
	if t.ServerName == "" {
		return errors.New("server name is required (-s/--server)")
	}
	if withDatabase && t.DatabaseName == "" {
		return errors.New("database name is required (-d/--database)")
	}
	return nil
}

func (t *target) String() string {
	if t.DatabaseName == "" {
		return t.ResourceGroupName + "/" + t.ServerName
	}
	return t.ResourceGroupName + "/" + t.ServerName + "/" + t.DatabaseName
}

func (f *ServerTargetFlags) targets(stdin io.Reader) ([]target, error) {
	return bindTargets(target{ResourceGroupName: f.ResourceGroupName, ServerName: f.ServerName}, string(f.Input), stdin, false)
}

func (f *DatabaseTargetFlags) targets(stdin io.Reader) ([]target, error) {
	return bindTargets(target{ResourceGroupName: f.ResourceGroupName, ServerName: f.ServerName, DatabaseName: f.DatabaseName}, string(f.Input), stdin, true)
}

// bindTargets overlays the flag values on each input record and validates
// every target before any request is made.
func bindTargets(fromFlags target, input string, stdin io.Reader, withDatabase bool) ([]target, error) {
	list := []target{fromFlags}
	if input != "" {
		records, err := readTargets(input, stdin)
		if err != nil {
			return nil, err
		}
		list = list[:0]
		for _, rec := range records {
			if fromFlags.ResourceGroupName != "" {
				rec.ResourceGroupName = fromFlags.ResourceGroupName
			}
			if fromFlags.ServerName != "" {
				rec.ServerName = fromFlags.ServerName
			}
			if fromFlags.DatabaseName != "" {
				rec.DatabaseName = fromFlags.DatabaseName
			}
			if !withDatabase {
				rec.DatabaseName = ""
			}
			list = append(list, rec)
		}
	}
	for i := range list {
		if err := list[i].validate(withDatabase); err != nil {
			if input != "" {
				return nil, fmt.Errorf("input record %d: %w", i+1, err)
			}
			return nil, err
		}
	}
	return list, nil
}

// readTargets reads a stream of JSON objects and/or arrays of objects.
func readTargets(input string, stdin io.Reader) ([]target, error) {
	var r io.Reader
	if input == "-" {
		r = stdin
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("could not open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	records := []target{}
	dec := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not parse input: %w", err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			list := []target{}
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("could not parse input: %w", err)
			}
			records = append(records, list...)
			continue
		}
		rec := target{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("could not parse input: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("no records found in input")
	}
	return records, nil
}

func (s *System) autoTuningAdapter(subscription string) (*autotuning.Adapter, error) {
	if s.Profile == nil {
		return nil, errors.New("connection profile is not loaded")
	}
	p := *s.Profile
	if subscription != "" {
		p.SubscriptionID = subscription
	}
	return autotuning.NewAdapter(&p, s.Logger.WithPrefix("[sqlmgmt] "), s.ClientFactory), nil
}

// dryRunRequest is printed by set --dry-run in place of the result.
type dryRunRequest struct {
	Method  string      `json:"method" yaml:"method"`
	Target  target      `json:"target" yaml:"target"`
	Request interface{} `json:"request" yaml:"request"`
}

func dryRunOutput(o OutputFlags) OutputFlags {
	if f := o.format(); f != "json" && f != "yaml" && f != "jq" && f != "text" {
		o.Output = "json-indent"
	}
	o.Pager = false
	return o
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// optionCell shows desired/actual and highlights an option whose actual state lags the desired one.
func optionCell(t *printer.TableWriter, desired autotuning.OptionDesiredState, actual autotuning.OptionActualState) string {
	cell := dash(string(desired)) + "/" + dash(string(actual))
	if (desired == autotuning.OptionDesiredOn || desired == autotuning.OptionDesiredOff) && actual != "" && string(desired) != string(actual) {
		return t.ColorWarn.Sprint(cell)
	}
	return cell
}

func serversRendered(items []*autotuning.ServerTuning) *rendered {
	return &rendered{
		Title:  "SERVER AUTOMATIC TUNING",
		Data:   items,
		Header: table.Row{"ResourceGroup", "Server", "DesiredState", "ActualState", "ForceLastGoodPlan", "CreateIndex", "DropIndex"},
		Rows: func(t *printer.TableWriter) []table.Row {
			rows := []table.Row{}
			for _, m := range items {
				rows = append(rows, table.Row{
					m.ResourceGroupName,
					m.ServerName,
					dash(string(m.DesiredState)),
					dash(string(m.ActualState)),
					optionCell(t, m.ForceLastGoodPlanDesiredState, m.ForceLastGoodPlanActualState),
					optionCell(t, m.CreateIndexDesiredState, m.CreateIndexActualState),
					optionCell(t, m.DropIndexDesiredState, m.DropIndexActualState),
				})
			}
			return rows
		},
		Text: func(out io.Writer) {
			for _, m := range items {
				fmt.Fprintf(out, "ResourceGroup: %s, Server: %s, DesiredState: %s, ActualState: %s, ForceLastGoodPlan: %s/%s, CreateIndex: %s/%s, DropIndex: %s/%s, ResourceID: %s\n",
					m.ResourceGroupName,
					m.ServerName,
					dash(string(m.DesiredState)),
					dash(string(m.ActualState)),
					dash(string(m.ForceLastGoodPlanDesiredState)), dash(string(m.ForceLastGoodPlanActualState)),
					dash(string(m.CreateIndexDesiredState)), dash(string(m.CreateIndexActualState)),
					dash(string(m.DropIndexDesiredState)), dash(string(m.DropIndexActualState)),
					dash(m.ResourceID),
				)
			}
		},
	}
}

func databasesRendered(items []*autotuning.DatabaseTuning) *rendered {
	return &rendered{
		Title:  "DATABASE AUTOMATIC TUNING",
		Data:   items,
		Header: table.Row{"ResourceGroup", "Server", "Database", "DesiredState", "ActualState", "ForceLastGoodPlan", "CreateIndex", "DropIndex"},
		Rows: func(t *printer.TableWriter) []table.Row {
			rows := []table.Row{}
			for _, m := range items {
				rows = append(rows, table.Row{
					m.ResourceGroupName,
					m.ServerName,
					m.DatabaseName,
					dash(string(m.DesiredState)),
					dash(string(m.ActualState)),
					optionCell(t, m.ForceLastGoodPlanDesiredState, m.ForceLastGoodPlanActualState),
					optionCell(t, m.CreateIndexDesiredState, m.CreateIndexActualState),
					optionCell(t, m.DropIndexDesiredState, m.DropIndexActualState),
				})
			}
			return rows
		},
		Text: func(out io.Writer) {
			for _, m := range items {
				fmt.Fprintf(out, "ResourceGroup: %s, Server: %s, Database: %s, DesiredState: %s, ActualState: %s, ForceLastGoodPlan: %s/%s, CreateIndex: %s/%s, DropIndex: %s/%s, ResourceID: %s\n",
					m.ResourceGroupName,
					m.ServerName,
					m.DatabaseName,
					dash(string(m.DesiredState)),
					dash(string(m.ActualState)),
					dash(string(m.ForceLastGoodPlanDesiredState)), dash(string(m.ForceLastGoodPlanActualState)),
					dash(string(m.CreateIndexDesiredState)), dash(string(m.CreateIndexActualState)),
					dash(string(m.DropIndexDesiredState)), dash(string(m.DropIndexActualState)),
					dash(m.ResourceID),
				)
			}
		},
	}
}

func dryRunRendered(items []dryRunRequest) *rendered {
	return &rendered{
		Data: items,
		Text: func(out io.Writer) {
			for _, i := range items {
				body, _ := json.Marshal(i.Request)
				fmt.Fprintf(out, "%s %s %s\n", i.Method, i.Target.String(), string(body))
			}
		},
	}
}

func joinCmd(cmd []string) string {
	return strings.Join(cmd, ".")
}
