package cmd

import (
	"strings"

	flags "github.com/rglonek/go-flags"
	"github.com/sqlctl/sqlctl/pkg/autotuning"
	"github.com/sqlctl/sqlctl/pkg/utils/printer"
)

type TypeServerMode string
type TypeDatabaseMode string
type TypeOptionState string
type TypeOutput string
type TypeTableTheme string

func (t *TypeServerMode) String() string {
	return string(*t)
}
func (t *TypeDatabaseMode) String() string {
	return string(*t)
}
func (t *TypeOptionState) String() string {
	return string(*t)
}
func (t *TypeOutput) String() string {
	return string(*t)
}
func (t *TypeTableTheme) String() string {
	return string(*t)
}

// the mode types accept any casing and store the canonical value
func (t *TypeServerMode) UnmarshalFlag(value string) error {
	v, err := autotuning.ParseServerMode(value)
	if err != nil {
		return err
	}
	*t = TypeServerMode(v)
	return nil
}

func (t *TypeDatabaseMode) UnmarshalFlag(value string) error {
	v, err := autotuning.ParseDatabaseMode(value)
	if err != nil {
		return err
	}
	*t = TypeDatabaseMode(v)
	return nil
}

func (t *TypeOptionState) UnmarshalFlag(value string) error {
	v, err := autotuning.ParseOptionDesiredState(value)
	if err != nil {
		return err
	}
	*t = TypeOptionState(v)
	return nil
}

func completeFrom(clist []string, match string) []flags.Completion {
	out := []flags.Completion{}
	for _, item := range clist {
		if match == "" || strings.HasPrefix(strings.ToLower(item), strings.ToLower(match)) {
			out = append(out, flags.Completion{
				Item: item,
			})
		}
	}
	return out
}

func (t *TypeServerMode) Complete(match string) []flags.Completion {
	return completeFrom(autotuning.ServerModes, match)
}

func (t *TypeDatabaseMode) Complete(match string) []flags.Completion {
	return completeFrom(autotuning.DatabaseModes, match)
}

func (t *TypeOptionState) Complete(match string) []flags.Completion {
	return completeFrom(autotuning.OptionDesiredStates, match)
}

func (t *TypeOutput) Complete(match string) []flags.Completion {
	return completeFrom(OutputFormats, match)
}

func (t *TypeTableTheme) Complete(match string) []flags.Completion {
	return completeFrom(printer.Themes, match)
}
