package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	flags "github.com/rglonek/go-flags"
)

type ConfigDefaultsCmd struct {
	Key         string         `short:"k" long:"key" description:"Key to modify or show, character '*' expansion is supported" default:"" no-default:"true"`
	OnlyChanged bool           `short:"o" long:"only-changed" description:"Set to only display values different from application default" no-default:"true"`
	Value       flags.Filename `short:"v" long:"value" description:"Value to set" default:"" no-default:"true"`
	Reset       bool           `short:"r" long:"reset" description:"Reset to default value. Use instead of --value" no-default:"true"`
	Help        HelpCmd        `command:"help" subcommands-optional:"true" description:"Print help"`
}

// defaultValue is one settable command option.
type defaultValue struct {
	Key   string
	field reflect.Value
	tag   reflect.StructTag
}

func (d *defaultValue) String() string {
	switch d.field.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(d.field.Bool())
	case reflect.Int, reflect.Int64:
		if d.field.Type() == reflect.TypeOf(time.Duration(0)) {
			return time.Duration(d.field.Int()).String()
		}
		return strconv.FormatInt(d.field.Int(), 10)
	case reflect.Slice:
		return fmt.Sprintf("%v", d.field.Interface())
	default:
		return d.field.String()
	}
}

func (d *defaultValue) defaultString() string {
	def := d.tag.Get("default")
	switch d.field.Kind() {
	case reflect.Bool:
		if def == "" {
			return "false"
		}
	case reflect.Int, reflect.Int64:
		if def == "" {
			return "0"
		}
		if d.field.Type() == reflect.TypeOf(time.Duration(0)) {
			if v, err := time.ParseDuration(def); err == nil {
				return v.String()
			}
		}
	case reflect.Slice:
		if def == "" {
			return "[]"
		}
		return "[" + def + "]"
	}
	return def
}

func (d *defaultValue) changed() bool {
	return d.String() != d.defaultString()
}

func (d *defaultValue) set(value string) error {
	value = strings.TrimSpace(value)
	if u, ok := d.field.Addr().Interface().(flags.Unmarshaler); ok {
		return u.UnmarshalFlag(value)
	}
	switch d.field.Kind() {
	case reflect.String:
		d.field.SetString(value)
	case reflect.Bool:
		if value == "" {
			value = "false"
		}
		v, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New("value must be one of: true|false")
		}
		d.field.SetBool(v)
	case reflect.Int, reflect.Int64:
		if value == "" {
			value = "0"
		}
		if d.field.Type() == reflect.TypeOf(time.Duration(0)) {
			v, err := time.ParseDuration(value)
			if err != nil {
				return errors.New("value must be a duration")
			}
			d.field.SetInt(int64(v))
			return nil
		}
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.New("value must be an integer")
		}
		d.field.SetInt(v)
	case reflect.Slice:
		if d.field.Type() != reflect.TypeOf([]string{}) {
			return errors.New("only string slices are supported")
		}
		if value == "" {
			d.field.Set(reflect.Zero(d.field.Type()))
		} else {
			d.field.Set(reflect.ValueOf([]string{value}))
		}
	default:
		return fmt.Errorf("key is not a parameter (%s)", d.field.Kind())
	}
	return nil
}

// listDefaults walks the command tree and returns every option that can
// carry a default, keyed by its dotted field path.
func listDefaults(v reflect.Value, prefix string) []*defaultValue {
	ret := []*defaultValue{}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() || f.Tag.Get("no-default") == "true" {
			continue
		}
		key := f.Name
		if prefix != "" {
			key = prefix + "." + f.Name
		}
		if strings.HasPrefix(key, "Config.Defaults.") {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Struct:
			if field.Type() == reflect.TypeOf(HelpCmd{}) {
				continue
			}
			ret = append(ret, listDefaults(field, key)...)
		case reflect.String, reflect.Bool, reflect.Int, reflect.Int64, reflect.Slice:
			ret = append(ret, &defaultValue{Key: key, field: field, tag: f.Tag})
		}
	}
	return ret
}

func keyMatcher(key string) (*regexp.Regexp, error) {
	if key == "" {
		return regexp.Compile(".*")
	}
	parts := strings.Split(key, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + `(\..*)?$`)
}

func (c *ConfigDefaultsCmd) Execute(args []string) error {
	cmd := []string{"config", "defaults"}
	system, err := Initialize(&Init{}, cmd, c, args...)
	if err != nil {
		return Error(err, system, cmd, c, args)
	}
	return Error(c.ConfigDefaults(system, os.Stdout), system, cmd, c, args)
}

// ConfigDefaults shows matching defaults, or sets/resets them and rewrites the configuration file.
func (c *ConfigDefaultsCmd) ConfigDefaults(system *System, out io.Writer) error {
	key := c.Key
	value := string(c.Value)
	reset := c.Reset
	onlyChanged := c.OnlyChanged
	// parsed into the command tree, must not end up in the configuration file
	system.Opts.Config.Defaults.Key = ""
	system.Opts.Config.Defaults.Value = ""
	system.Opts.Config.Defaults.Reset = false
	system.Opts.Config.Defaults.OnlyChanged = false

	match, err := keyMatcher(key)
	if err != nil {
		return err
	}
	found := []*defaultValue{}
	for _, d := range listDefaults(reflect.ValueOf(system.Opts).Elem(), "") {
		if match.MatchString(d.Key) {
			found = append(found, d)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("key not found: %s", key)
	}

	if value == "" && !reset {
		for _, d := range found {
			if onlyChanged && !d.changed() {
				continue
			}
			fmt.Fprintf(out, "%s = %s\n", d.Key, d.String())
		}
		return nil
	}

	if !strings.Contains(key, "*") {
		exact := []*defaultValue{}
		for _, d := range found {
			if d.Key == key {
				exact = append(exact, d)
			}
		}
		if len(exact) == 0 {
			return fmt.Errorf("%s is not a single parameter; use the full key or '*' expansion", key)
		}
		found = exact
	}
	for _, d := range found {
		v := value
		if reset {
			v = d.tag.Get("default")
		}
		if err := d.set(v); err != nil {
			return fmt.Errorf("%s: %w", d.Key, err)
		}
	}
	if err := system.WriteConfigFile(); err != nil {
		return fmt.Errorf("could not write configuration file: %w", err)
	}
	for _, d := range found {
		fmt.Fprintf(out, "OK: %s = %s\n", d.Key, d.String())
	}
	return nil
}
