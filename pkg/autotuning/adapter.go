package autotuning

import (
	"context"

	"github.com/rglonek/logger"
	"github.com/sqlctl/sqlctl/pkg/config"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt"
)

// Adapter converts between the local models and the management API bodies.
type Adapter struct {
	Communicator *Communicator
	log          *logger.Logger
}

func NewAdapter(profile *config.Profile, log *logger.Logger, factory ClientFactory) *Adapter {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Adapter{
		Communicator: NewCommunicator(profile, log, factory),
		log:          log,
	}
}

func (a *Adapter) GetServerSettings(ctx context.Context, resourceGroupName string, serverName string) (*ServerTuning, error) {
	resp, err := a.Communicator.GetServerConfiguration(ctx, resourceGroupName, serverName)
	if err != nil {
		return nil, err
	}
	return serverFromResponse(resourceGroupName, serverName, resp), nil
}

// UpdateServerSettings sends the desired states of the model and returns the state reported back.
func (a *Adapter) UpdateServerSettings(ctx context.Context, m *ServerTuning) (*ServerTuning, error) {
	resp, err := a.Communicator.UpdateServerConfiguration(ctx, m.ResourceGroupName, m.ServerName, ServerUpdateRequest(m))
	if err != nil {
		return nil, err
	}
	return serverFromResponse(m.ResourceGroupName, m.ServerName, resp), nil
}

func (a *Adapter) GetDatabaseSettings(ctx context.Context, resourceGroupName string, serverName string, databaseName string) (*DatabaseTuning, error) {
	resp, err := a.Communicator.GetDatabaseConfiguration(ctx, resourceGroupName, serverName, databaseName)
	if err != nil {
		return nil, err
	}
	return databaseFromResponse(resourceGroupName, serverName, databaseName, resp), nil
}

func (a *Adapter) UpdateDatabaseSettings(ctx context.Context, m *DatabaseTuning) (*DatabaseTuning, error) {
	resp, err := a.Communicator.UpdateDatabaseConfiguration(ctx, m.ResourceGroupName, m.ServerName, m.DatabaseName, DatabaseUpdateRequest(m))
	if err != nil {
		return nil, err
	}
	return databaseFromResponse(m.ResourceGroupName, m.ServerName, m.DatabaseName, resp), nil
}

// ServerUpdateRequest builds the PATCH body for a server. Unset and Unspecified
// desired states are left out.
func ServerUpdateRequest(m *ServerTuning) *sqlmgmt.ServerAutomaticTuning {
	props := &sqlmgmt.ServerAutomaticTuningProperties{}
	if m.DesiredState != "" && m.DesiredState != ServerModeUnspecified {
		props.DesiredState = string(m.DesiredState)
	}
	options := map[string]sqlmgmt.AutomaticTuningServerOptions{}
	addOption := func(name string, desired OptionDesiredState) {
		if desired != "" {
			options[name] = sqlmgmt.AutomaticTuningServerOptions{DesiredState: string(desired)}
		}
	}
	addOption(sqlmgmt.OptionForceLastGoodPlan, m.ForceLastGoodPlanDesiredState)
	addOption(sqlmgmt.OptionCreateIndex, m.CreateIndexDesiredState)
	addOption(sqlmgmt.OptionDropIndex, m.DropIndexDesiredState)
	if len(options) > 0 {
		props.Options = options
	}
	return &sqlmgmt.ServerAutomaticTuning{Properties: props}
}

// DatabaseUpdateRequest builds the PATCH body for a database.
func DatabaseUpdateRequest(m *DatabaseTuning) *sqlmgmt.DatabaseAutomaticTuning {
	props := &sqlmgmt.DatabaseAutomaticTuningProperties{}
	if m.DesiredState != "" && m.DesiredState != DatabaseModeUnspecified {
		props.DesiredState = string(m.DesiredState)
	}
	options := map[string]sqlmgmt.AutomaticTuningOptions{}
	addOption := func(name string, desired OptionDesiredState) {
		if desired != "" {
			options[name] = sqlmgmt.AutomaticTuningOptions{DesiredState: string(desired)}
		}
	}
	addOption(sqlmgmt.OptionForceLastGoodPlan, m.ForceLastGoodPlanDesiredState)
	addOption(sqlmgmt.OptionCreateIndex, m.CreateIndexDesiredState)
	addOption(sqlmgmt.OptionDropIndex, m.DropIndexDesiredState)
	if len(options) > 0 {
		props.Options = options
	}
	return &sqlmgmt.DatabaseAutomaticTuning{Properties: props}
}

func serverFromResponse(resourceGroupName string, serverName string, resp *sqlmgmt.ServerAutomaticTuning) *ServerTuning {
	m := &ServerTuning{
		ResourceID:        resp.ID,
		ResourceGroupName: resourceGroupName,
		ServerName:        serverName,
	}
	if resp.Properties == nil {
		return m
	}
	m.ActualState = ServerMode(resp.Properties.ActualState)
	m.DesiredState = ServerMode(resp.Properties.DesiredState)
	if o, ok := resp.Properties.Options[sqlmgmt.OptionForceLastGoodPlan]; ok {
		m.ForceLastGoodPlanActualState = OptionActualState(o.ActualState)
		m.ForceLastGoodPlanDesiredState = OptionDesiredState(o.DesiredState)
	}
	if o, ok := resp.Properties.Options[sqlmgmt.OptionCreateIndex]; ok {
		m.CreateIndexActualState = OptionActualState(o.ActualState)
		m.CreateIndexDesiredState = OptionDesiredState(o.DesiredState)
	}
	if o, ok := resp.Properties.Options[sqlmgmt.OptionDropIndex]; ok {
		m.DropIndexActualState = OptionActualState(o.ActualState)
		m.DropIndexDesiredState = OptionDesiredState(o.DesiredState)
	}
	return m
}

func databaseFromResponse(resourceGroupName string, serverName string, databaseName string, resp *sqlmgmt.DatabaseAutomaticTuning) *DatabaseTuning {
	m := &DatabaseTuning{
		ResourceID:        resp.ID,
		ResourceGroupName: resourceGroupName,
		ServerName:        serverName,
		DatabaseName:      databaseName,
	}
	if resp.Properties == nil {
		return m
	}
	m.ActualState = DatabaseMode(resp.Properties.ActualState)
	m.DesiredState = DatabaseMode(resp.Properties.DesiredState)
	if o, ok := resp.Properties.Options[sqlmgmt.OptionForceLastGoodPlan]; ok {
		m.ForceLastGoodPlanActualState = OptionActualState(o.ActualState)
		m.ForceLastGoodPlanDesiredState = OptionDesiredState(o.DesiredState)
	}
	if o, ok := resp.Properties.Options[sqlmgmt.OptionCreateIndex]; ok {
		m.CreateIndexActualState = OptionActualState(o.ActualState)
		m.CreateIndexDesiredState = OptionDesiredState(o.DesiredState)
	}
	if o, ok := resp.Properties.Options[sqlmgmt.OptionDropIndex]; ok {
		m.DropIndexActualState = OptionActualState(o.ActualState)
		m.DropIndexDesiredState = OptionDesiredState(o.DesiredState)
	}
	return m
}
