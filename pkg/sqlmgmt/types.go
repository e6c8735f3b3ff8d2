package sqlmgmt

// Automatic tuning option names as used in the options map.
const (
	OptionForceLastGoodPlan = "forceLastGoodPlan"
	OptionCreateIndex       = "createIndex"
	OptionDropIndex         = "dropIndex"
)

// Default API versions of the automatic tuning resources.
const (
	DefaultServerAPIVersion   = "2017-03-01-preview"
	DefaultDatabaseAPIVersion = "2015-05-01-preview"
)

// AutomaticTuningOptions is a single tuning option of a database.
type AutomaticTuningOptions struct {
	DesiredState string `json:"desiredState,omitempty"`
	ActualState  string `json:"actualState,omitempty"`
	ReasonCode   *int   `json:"reasonCode,omitempty"`
	ReasonDesc   string `json:"reasonDesc,omitempty"`
}

// AutomaticTuningServerOptions is a single tuning option of a server.
type AutomaticTuningServerOptions struct {
	DesiredState string `json:"desiredState,omitempty"`
	ActualState  string `json:"actualState,omitempty"`
	ReasonCode   *int   `json:"reasonCode,omitempty"`
	ReasonDesc   string `json:"reasonDesc,omitempty"`
}

type DatabaseAutomaticTuningProperties struct {
	DesiredState string                            `json:"desiredState,omitempty"`
	ActualState  string                            `json:"actualState,omitempty"`
	Options      map[string]AutomaticTuningOptions `json:"options,omitempty"`
}

// DatabaseAutomaticTuning is the automaticTuning/current resource of a database.
// Read-only fields (id, name, type, actual states) are ignored by the service on update.
type DatabaseAutomaticTuning struct {
	ID         string                             `json:"id,omitempty"`
	Name       string                             `json:"name,omitempty"`
	Type       string                             `json:"type,omitempty"`
	Properties *DatabaseAutomaticTuningProperties `json:"properties,omitempty"`
}

type ServerAutomaticTuningProperties struct {
	DesiredState string                                  `json:"desiredState,omitempty"`
	ActualState  string                                  `json:"actualState,omitempty"`
	Options      map[string]AutomaticTuningServerOptions `json:"options,omitempty"`
}

// ServerAutomaticTuning is the automaticTuning/current resource of a server.
type ServerAutomaticTuning struct {
	ID         string                           `json:"id,omitempty"`
	Name       string                           `json:"name,omitempty"`
	Type       string                           `json:"type,omitempty"`
	Properties *ServerAutomaticTuningProperties `json:"properties,omitempty"`
}

// cloudError is the ARM error envelope.
type cloudError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Target  string `json:"target,omitempty"`
	} `json:"error"`
}
