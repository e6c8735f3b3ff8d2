// Package autotuning holds the local automatic tuning models and the
// adapter/communicator pair that maps them onto the management API.
package autotuning

import (
	"fmt"
	"strings"
)

// An empty value of any of the state types below means the value is unset.

// DatabaseMode is the top-level automatic tuning mode of a database.
type DatabaseMode string

const (
	DatabaseModeInherit     DatabaseMode = "Inherit"
	DatabaseModeCustom      DatabaseMode = "Custom"
	DatabaseModeAuto        DatabaseMode = "Auto"
	DatabaseModeUnspecified DatabaseMode = "Unspecified"
)

// ServerMode is the top-level automatic tuning mode of a server.
type ServerMode string

const (
	ServerModeCustom      ServerMode = "Custom"
	ServerModeAuto        ServerMode = "Auto"
	ServerModeUnspecified ServerMode = "Unspecified"
)

// OptionDesiredState is the requested state of a single tuning option.
type OptionDesiredState string

const (
	OptionDesiredOff     OptionDesiredState = "Off"
	OptionDesiredOn      OptionDesiredState = "On"
	OptionDesiredDefault OptionDesiredState = "Default"
)

// OptionActualState is the effective state of a single tuning option.
type OptionActualState string

const (
	OptionActualOff OptionActualState = "Off"
	OptionActualOn  OptionActualState = "On"
)

var (
	DatabaseModes       = []string{string(DatabaseModeInherit), string(DatabaseModeCustom), string(DatabaseModeAuto), string(DatabaseModeUnspecified)}
	ServerModes         = []string{string(ServerModeCustom), string(ServerModeAuto), string(ServerModeUnspecified)}
	OptionDesiredStates = []string{string(OptionDesiredOff), string(OptionDesiredOn), string(OptionDesiredDefault)}
)

func parseChoice(kind string, value string, choices []string) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, c := range choices {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q, must be one of: %s", kind, value, strings.Join(choices, ", "))
}

func ParseDatabaseMode(s string) (DatabaseMode, error) {
	v, err := parseChoice("database tuning mode", s, DatabaseModes)
	return DatabaseMode(v), err
}

func ParseServerMode(s string) (ServerMode, error) {
	v, err := parseChoice("server tuning mode", s, ServerModes)
	return ServerMode(v), err
}

func ParseOptionDesiredState(s string) (OptionDesiredState, error) {
	v, err := parseChoice("option state", s, OptionDesiredStates)
	return OptionDesiredState(v), err
}

// ServerTuning is the automatic tuning configuration of a server.
type ServerTuning struct {
	ResourceID                    string             `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	ResourceGroupName             string             `json:"resourceGroupName" yaml:"resourceGroupName"`
	ServerName                    string             `json:"serverName" yaml:"serverName"`
	ActualState                   ServerMode         `json:"actualState,omitempty" yaml:"actualState,omitempty"`
	DesiredState                  ServerMode         `json:"desiredState,omitempty" yaml:"desiredState,omitempty"`
	ForceLastGoodPlanActualState  OptionActualState  `json:"forceLastGoodPlanActualState,omitempty" yaml:"forceLastGoodPlanActualState,omitempty"`
	ForceLastGoodPlanDesiredState OptionDesiredState `json:"forceLastGoodPlanDesiredState,omitempty" yaml:"forceLastGoodPlanDesiredState,omitempty"`
	CreateIndexActualState        OptionActualState  `json:"createIndexActualState,omitempty" yaml:"createIndexActualState,omitempty"`
	CreateIndexDesiredState       OptionDesiredState `json:"createIndexDesiredState,omitempty" yaml:"createIndexDesiredState,omitempty"`
	DropIndexActualState          OptionActualState  `json:"dropIndexActualState,omitempty" yaml:"dropIndexActualState,omitempty"`
	DropIndexDesiredState         OptionDesiredState `json:"dropIndexDesiredState,omitempty" yaml:"dropIndexDesiredState,omitempty"`
}

// DatabaseTuning is the automatic tuning configuration of a database.
type DatabaseTuning struct {
	ResourceID                    string             `json:"resourceId,omitempty" yaml:"resourceId,omitempty"`
	ResourceGroupName             string             `json:"resourceGroupName" yaml:"resourceGroupName"`
	ServerName                    string             `json:"serverName" yaml:"serverName"`
	DatabaseName                  string             `json:"databaseName" yaml:"databaseName"`
	ActualState                   DatabaseMode       `json:"actualState,omitempty" yaml:"actualState,omitempty"`
	DesiredState                  DatabaseMode       `json:"desiredState,omitempty" yaml:"desiredState,omitempty"`
	ForceLastGoodPlanActualState  OptionActualState  `json:"forceLastGoodPlanActualState,omitempty" yaml:"forceLastGoodPlanActualState,omitempty"`
	ForceLastGoodPlanDesiredState OptionDesiredState `json:"forceLastGoodPlanDesiredState,omitempty" yaml:"forceLastGoodPlanDesiredState,omitempty"`
	CreateIndexActualState        OptionActualState  `json:"createIndexActualState,omitempty" yaml:"createIndexActualState,omitempty"`
	CreateIndexDesiredState       OptionDesiredState `json:"createIndexDesiredState,omitempty" yaml:"createIndexDesiredState,omitempty"`
	DropIndexActualState          OptionActualState  `json:"dropIndexActualState,omitempty" yaml:"dropIndexActualState,omitempty"`
	DropIndexDesiredState         OptionDesiredState `json:"dropIndexDesiredState,omitempty" yaml:"dropIndexDesiredState,omitempty"`
}
