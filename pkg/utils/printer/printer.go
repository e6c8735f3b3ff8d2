// Package printer renders rows as tables using go-pretty.
package printer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bestmethod/inslice"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var ErrTerminalWidthUnknown = errors.New("terminal width unknown")

// TableFormats are the render types handled by a TableWriter.
var TableFormats = []string{"table", "csv", "tsv", "html", "markdown"}

// Themes are the accepted table themes.
var Themes = []string{"default", "frame", "box"}

type Options struct {
	RenderType string
	Theme      string
	// SortBy entries are FIELDNAME:asc|dsc|ascnum|dscnum
	SortBy []string
	// ForceColorOff disables colors, e.g. for pagers that cannot show them.
	ForceColorOff bool
	// WithPager skips the terminal width limit and checks stdin instead of stdout for a terminal.
	WithPager bool
}

type TableWriter struct {
	t              table.Writer
	render         func() string
	ColorHiWhite   colorPrint
	ColorWarn      colorPrint
	ColorErr       colorPrint
	IsColorEnabled bool
	IsTerminal     bool
}

func ParseSortBy(sortBy []string) ([]table.SortBy, error) {
	sort := []table.SortBy{}
	for _, item := range sortBy {
		name, modifier, ok := strings.Cut(item, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("sort item %q wrong format, expected FIELDNAME:asc|dsc|ascnum|dscnum", item)
		}
		var mode table.SortMode
		switch modifier {
		case "asc":
			mode = table.Asc
		case "dsc":
			mode = table.Dsc
		case "ascnum":
			mode = table.AscNumeric
		case "dscnum":
			mode = table.DscNumeric
		default:
			return nil, fmt.Errorf("sort item %q incorrect modifier %q", item, modifier)
		}
		sort = append(sort, table.SortBy{Name: name, Mode: mode})
	}
	return sort, nil
}

// GetTableWriter returns a writer for one table. ErrTerminalWidthUnknown is
// returned together with a usable writer.
func GetTableWriter(opts Options) (*TableWriter, error) {
	if opts.Theme == "" {
		opts.Theme = "default"
	}
	if !inslice.HasString(Themes, opts.Theme) {
		return nil, fmt.Errorf("unknown table theme %q, must be one of: %s", opts.Theme, strings.Join(Themes, ", "))
	}
	sort, err := ParseSortBy(opts.SortBy)
	if err != nil {
		return nil, err
	}

	t := table.NewWriter()
	render := t.Render
	switch strings.ToLower(opts.RenderType) {
	case "html":
		render = t.RenderHTML
	case "csv":
		render = t.RenderCSV
	case "tsv":
		render = t.RenderTSV
	case "markdown":
		render = t.RenderMarkdown
	}

	tw := &TableWriter{
		t:            t,
		render:       render,
		ColorHiWhite: colorPrint{c: text.Colors{text.FgHiWhite}, enable: true},
		ColorWarn:    colorPrint{c: text.Colors{text.BgHiYellow, text.FgBlack}, enable: true},
		ColorErr:     colorPrint{c: text.Colors{text.BgHiRed, text.FgWhite}, enable: true},
	}

	fd := os.Stdout.Fd()
	if opts.WithPager {
		fd = os.Stdin.Fd()
	}
	tw.IsTerminal = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	tw.IsColorEnabled = tw.IsTerminal && opts.Theme == "default" && strings.ToLower(opts.RenderType) == "table"
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("CLICOLOR") == "0" || opts.ForceColorOff {
		tw.IsColorEnabled = false
	}

	if len(sort) > 0 {
		t.SortBy(sort)
	}

	if tw.IsColorEnabled {
		t.SetStyle(table.StyleColoredBlackOnCyanWhite)
	} else {
		tw.ColorHiWhite.enable = false
		tw.ColorWarn.enable = false
		tw.ColorErr.enable = false
		t.SetStyle(table.StyleDefault)
		switch opts.Theme {
		case "frame":
			t.SetStyle(table.StyleRounded)
			t.Style().Options.DrawBorder = true
			t.Style().Options.SeparateColumns = false
		case "box":
			t.SetStyle(table.StyleRounded)
			t.Style().Options.SeparateColumns = true
		default:
			t.Style().Options.DrawBorder = false
			t.Style().Options.SeparateColumns = false
		}
	}
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	if tw.IsTerminal && !opts.WithPager {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || width < 1 {
			return tw, ErrTerminalWidthUnknown
		}
		t.SetAllowedRowLength(max(width, 40))
	}
	return tw, nil
}

func (t *TableWriter) RenderTable(title *string, header table.Row, rows []table.Row) string {
	if title != nil {
		t.t.SetTitle(t.ColorHiWhite.Sprint(*title))
	}
	t.t.AppendHeader(header)
	t.t.AppendRows(rows)
	return t.render()
}

type colorPrint struct {
	c      text.Colors
	enable bool
}

func (c *colorPrint) Sprint(a ...interface{}) string {
	if c.enable {
		return c.c.Sprint(a...)
	}
	return fmt.Sprint(a...)
}

func (c *colorPrint) Sprintf(format string, a ...interface{}) string {
	if c.enable {
		return c.c.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

func String(s string) *string {
	return &s
}
