package autotuning

// ServerTuningInput carries the desired values supplied by the user for a server.
// Empty fields are left untouched when applied.
type ServerTuningInput struct {
	DesiredState                  ServerMode
	ForceLastGoodPlanDesiredState OptionDesiredState
	CreateIndexDesiredState       OptionDesiredState
	DropIndexDesiredState         OptionDesiredState
}

// HasChanges reports whether Apply would modify a model.
func (in *ServerTuningInput) HasChanges() bool {
	return (in.DesiredState != "" && in.DesiredState != ServerModeUnspecified) ||
		in.ForceLastGoodPlanDesiredState != "" ||
		in.CreateIndexDesiredState != "" ||
		in.DropIndexDesiredState != ""
}

// Apply merges the input into the model. Unspecified is never applied as a desired state.
func (in *ServerTuningInput) Apply(m *ServerTuning) {
	if in.DesiredState != "" && in.DesiredState != ServerModeUnspecified {
		m.DesiredState = in.DesiredState
	}
	if in.ForceLastGoodPlanDesiredState != "" {
		m.ForceLastGoodPlanDesiredState = in.ForceLastGoodPlanDesiredState
	}
	if in.CreateIndexDesiredState != "" {
		m.CreateIndexDesiredState = in.CreateIndexDesiredState
	}
	if in.DropIndexDesiredState != "" {
		m.DropIndexDesiredState = in.DropIndexDesiredState
	}
}

// DatabaseTuningInput carries the desired values supplied by the user for a database.
type DatabaseTuningInput struct {
	DesiredState                  DatabaseMode
	ForceLastGoodPlanDesiredState OptionDesiredState
	CreateIndexDesiredState       OptionDesiredState
	DropIndexDesiredState         OptionDesiredState
}

func (in *DatabaseTuningInput) HasChanges() bool {
	return (in.DesiredState != "" && in.DesiredState != DatabaseModeUnspecified) ||
		in.ForceLastGoodPlanDesiredState != "" ||
		in.CreateIndexDesiredState != "" ||
		in.DropIndexDesiredState != ""
}

func (in *DatabaseTuningInput) Apply(m *DatabaseTuning) {
	if in.DesiredState != "" && in.DesiredState != DatabaseModeUnspecified {
		m.DesiredState = in.DesiredState
	}
	if in.ForceLastGoodPlanDesiredState != "" {
		m.ForceLastGoodPlanDesiredState = in.ForceLastGoodPlanDesiredState
	}
	if in.CreateIndexDesiredState != "" {
		m.CreateIndexDesiredState = in.CreateIndexDesiredState
	}
	if in.DropIndexDesiredState != "" {
		m.DropIndexDesiredState = in.DropIndexDesiredState
	}
}
