package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bestmethod/inslice"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sqlctl/sqlctl/pkg/utils/pager"
	"github.com/sqlctl/sqlctl/pkg/utils/printer"
	"gopkg.in/yaml.v3"
)

var OutputFormats = []string{"table", "text", "json", "json-indent", "yaml", "jq", "csv", "tsv", "html", "markdown"}

type OutputFlags struct {
	Output     TypeOutput     `short:"o" long:"output" description:"Output format (table, text, json, json-indent, yaml, jq, csv, tsv, html, markdown)" default:"table"`
	TableTheme TypeTableTheme `short:"t" long:"table-theme" description:"Table theme (default, frame, box)" default:"default"`
	SortBy     []string       `long:"sort-by" description:"Can be specified multiple times. Sort by format: FIELDNAME:asc|dsc|ascnum|dscnum"`
	Pager      bool           `short:"p" long:"pager" description:"Use a pager to display the output"`
}

// rendered is one result set: Data is encoded as-is for the structured
// formats, Header and Rows feed the table formats and Text the text format.
type rendered struct {
	Title  string
	Data   interface{}
	Header table.Row
	Rows   func(t *printer.TableWriter) []table.Row
	Text   func(out io.Writer)
}

func (o *OutputFlags) format() string {
	if o.Output == "" {
		return "table"
	}
	return strings.ToLower(string(o.Output))
}

func (o *OutputFlags) Validate() error {
	if !inslice.HasString(OutputFormats, o.format()) {
		return fmt.Errorf("unknown output format %q, must be one of: %s", o.Output, strings.Join(OutputFormats, ", "))
	}
	return nil
}

func (o *OutputFlags) Render(system *System, out io.Writer, r *rendered) error {
	if err := o.Validate(); err != nil {
		return err
	}
	var page *pager.Pager
	if o.Pager {
		var err error
		page, err = pager.New(out)
		if err != nil {
			return err
		}
		err = page.Start()
		if err != nil {
			return err
		}
		defer page.Close()
		out = page
	}

	switch o.format() {
	case "jq":
		params := []string{}
		if page != nil && page.HasColors() {
			params = append(params, "-C")
		}
		cmd := exec.Command("jq", params...)
		cmd.Stdout = out
		cmd.Stderr = out
		w, err := cmd.StdinPipe()
		if err != nil {
			return err
		}
		defer w.Close()
		enc := json.NewEncoder(w)
		go func() {
			enc.Encode(r.Data)
			w.Close()
		}()
		return cmd.Run()
	case "json":
		return json.NewEncoder(out).Encode(r.Data)
	case "json-indent":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Data)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(r.Data); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		r.Text(out)
		fmt.Fprintln(out, "")
	default:
		t, err := printer.GetTableWriter(printer.Options{
			RenderType:    o.format(),
			Theme:         string(o.TableTheme),
			SortBy:        o.SortBy,
			ForceColorOff: !page.HasColors(),
			WithPager:     page != nil,
		})
		if err != nil {
			if err != printer.ErrTerminalWidthUnknown {
				return err
			}
			system.Logger.Warn("Couldn't get terminal width, using default width")
		}
		var title *string
		if r.Title != "" && o.format() == "table" {
			title = printer.String(r.Title)
		}
		fmt.Fprintln(out, t.RenderTable(title, r.Header, r.Rows(t)))
		fmt.Fprintln(out, "")
	}
	return nil
}
