package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	flags "github.com/rglonek/go-flags"
	"github.com/rglonek/logger"
	"github.com/sqlctl/sqlctl/pkg/autotuning"
	"github.com/sqlctl/sqlctl/pkg/config"
)

var ErrExecuteError = errors.New("execute error")

type ExecuteError struct {
	Err    error
	Logger *logger.Logger
}

func (e *ExecuteError) Error() string {
	return e.Err.Error()
}

func (e *ExecuteError) Unwrap() error {
	return ErrExecuteError
}

// Error logs err and wraps it so that main does not print it a second time.
func Error(err error, system *System, command []string, params interface{}, args []string) error {
	if err == nil {
		return nil
	}
	system.Logger.Error("%s", err.Error())
	return &ExecuteError{
		Err:    err,
		Logger: system.Logger,
	}
}

type System struct {
	// Logger is set by Initialize, prefixed with the command path
	Logger *logger.Logger
	// all available commands
	Opts *Commands
	// flag parser
	Parser *flags.Parser
	// command defaults file parser
	IniParser *flags.IniParser
	// tail arguments
	Tail []string
	// connection profile, only loaded when Init.LoadProfile is set
	Profile *config.Profile
	// ClientFactory overrides how management clients are built; nil means the default
	ClientFactory autotuning.ClientFactory
	// init options are saved here
	InitOptions *Init
	InitTime    time.Time
	logLevel    logger.LogLevel
}

type Init struct {
	RunExecuteFunction bool // only set to true if you are initializing the application for the first time
	LoadProfile        bool // load the connection profile from the profile file and SQLCTL_* variables
}

// ParseLogLevel accepts level names or their numbers, 0=NONE to 6=DETAIL.
func ParseLogLevel(level string) (logger.LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "NONE":
		return 0, true
	case "CRITICAL":
		return logger.CRITICAL, true
	case "ERROR":
		return logger.ERROR, true
	case "WARNING", "WARN":
		return logger.WARNING, true
	case "INFO":
		return logger.INFO, true
	case "DEBUG":
		return logger.DEBUG, true
	case "DETAIL":
		return logger.DETAIL, true
	}
	n, err := strconv.Atoi(level)
	if err != nil || n < 0 || n > 6 {
		return logger.INFO, false
	}
	return logger.LogLevel(n), true
}

func Initialize(i *Init, command []string, params interface{}, args ...string) (*System, error) {
	s := &System{
		Logger:      logger.NewLogger(),
		Opts:        &Commands{},
		Parser:      &flags.Parser{},
		IniParser:   &flags.IniParser{},
		InitOptions: i,
		InitTime:    time.Now(),
	}
	s.logLevel = logger.INFO
	if lvl, ok := ParseLogLevel(os.Getenv("SQLCTL_LOG_LEVEL")); ok {
		s.logLevel = lvl
	}
	s.Logger.SetLogLevel(s.logLevel)
	if logFile := os.Getenv("SQLCTL_LOG_FILE"); logFile != "" {
		if err := s.Logger.SinkLogToFile(logFile); err != nil {
			s.Logger.Warn("Could not open log file %s: %s", logFile, err)
		}
	}
	if command != nil {
		s.Logger = s.Logger.WithPrefix(fmt.Sprintf("[%s] ", strings.Join(command, ".")))
	}

	if len(args) == 0 {
		args = os.Args[1:]
	}

	s.Parser = flags.NewParser(s.Opts, flags.HelpFlag|flags.PassDoubleDash|flags.IniIncludeDefaults|flags.IniIncludeComments|flags.IniCommentDefaults)
	s.IniParser = flags.NewIniParser(s.Parser)

	cfgFile, err := ConfigFileName()
	if err != nil {
		return s, err
	}
	dir := filepath.Dir(cfgFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			return s, err
		}
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		err = os.WriteFile(cfgFile, []byte(""), 0644)
		if err != nil {
			return s, err
		}
	}
	err = s.IniParser.ParseFile(cfgFile)
	if err != nil {
		return s, err
	}

	if !i.RunExecuteFunction {
		// called from within an Execute function, only parse
		s.Parser.CommandHandler = func(command flags.Commander, args []string) error {
			return nil
		}
	}

	s.Tail, err = s.Parser.ParseArgs(args)
	if err != nil {
		return s, err
	}

	_, _, _, version := GetSqlctlVersion()
	autotuning.UserAgent = "sqlctl/" + version

	if i.LoadProfile {
		profileFile, err := ProfileFileName()
		if err != nil {
			return s, err
		}
		s.Profile, err = config.MakeProfile(true, profileFile, true)
		if err != nil {
			return s, err
		}
		s.Logger.Detail("Loaded profile from %s (endpoint=%s subscription=%s)", profileFile, s.Profile.Endpoint, s.Profile.SubscriptionID)
	}
	return s, nil
}

func (s *System) WriteConfigFile() error {
	cfgFile, err := ConfigFileName()
	if err != nil {
		return err
	}
	opts := flags.IniOptions(flags.IniIncludeComments | flags.IniIncludeDefaults | flags.IniCommentDefaults)
	return s.IniParser.WriteFile(cfgFile, opts)
}

func ConfigFileName() (cfgFile string, err error) {
	cfgFile = os.Getenv("SQLCTL_CONFIG_FILE")
	if cfgFile == "" {
		var home string
		home, err = SqlctlRootDir()
		if err != nil {
			return
		}
		cfgFile = filepath.Join(home, "conf")
	}
	return
}

func ProfileFileName() (profileFile string, err error) {
	profileFile = os.Getenv("SQLCTL_PROFILE_FILE")
	if profileFile == "" {
		var home string
		home, err = SqlctlRootDir()
		if err != nil {
			return
		}
		profileFile = filepath.Join(home, "profile.yaml")
	}
	return
}
