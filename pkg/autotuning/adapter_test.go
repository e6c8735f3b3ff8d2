package autotuning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rglonek/logger"
	"github.com/sqlctl/sqlctl/pkg/config"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt/sqlmgmttest"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*Adapter, *sqlmgmttest.Server, *int) {
	t.Helper()
	resetClientCache()
	t.Cleanup(resetClientCache)
	srv := sqlmgmttest.NewServer()
	t.Cleanup(srv.Close)
	profile := &config.Profile{
		Endpoint:          srv.URL,
		SubscriptionID:    "sub-1",
		AccessToken:       "tok",
		MaxConcurrentJobs: 1,
	}
	created := 0
	factory := func(ctx context.Context, p *config.Profile, log *logger.Logger) (*sqlmgmt.Client, error) {
		created++
		return DefaultClientFactory(ctx, p, log)
	}
	return NewAdapter(profile, nil, factory), srv, &created
}

func seedServer(srv *sqlmgmttest.Server) string {
	path := sqlmgmttest.ServerPath("sub-1", "rg1", "srv1")
	srv.Seed(path, sqlmgmt.DatabaseAutomaticTuningProperties{
		DesiredState: "Auto",
		ActualState:  "Auto",
		Options: map[string]sqlmgmt.AutomaticTuningOptions{
			sqlmgmt.OptionForceLastGoodPlan: {DesiredState: "Default", ActualState: "On"},
			sqlmgmt.OptionCreateIndex:       {DesiredState: "Off", ActualState: "Off"},
			sqlmgmt.OptionDropIndex:         {DesiredState: "Default", ActualState: "Off"},
		},
	})
	return path
}

func TestGetServerSettings(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	path := seedServer(srv)
	m, err := a.GetServerSettings(context.Background(), "rg1", "srv1")
	require.NoError(t, err)
	require.Equal(t, path, m.ResourceID)
	require.Equal(t, "rg1", m.ResourceGroupName)
	require.Equal(t, "srv1", m.ServerName)
	require.Equal(t, ServerModeAuto, m.ActualState)
	require.Equal(t, ServerModeAuto, m.DesiredState)
	require.Equal(t, OptionActualOn, m.ForceLastGoodPlanActualState)
	require.Equal(t, OptionDesiredDefault, m.ForceLastGoodPlanDesiredState)
	require.Equal(t, OptionDesiredOff, m.CreateIndexDesiredState)
	require.Equal(t, OptionActualOff, m.DropIndexActualState)
}

func TestMissingOptionStaysUnset(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	srv.Seed(sqlmgmttest.DatabasePath("sub-1", "rg1", "srv1", "db1"), sqlmgmt.DatabaseAutomaticTuningProperties{
		DesiredState: "Inherit",
		ActualState:  "Auto",
		Options: map[string]sqlmgmt.AutomaticTuningOptions{
			sqlmgmt.OptionCreateIndex: {DesiredState: "On", ActualState: "On"},
		},
	})
	m, err := a.GetDatabaseSettings(context.Background(), "rg1", "srv1", "db1")
	require.NoError(t, err)
	require.Equal(t, "db1", m.DatabaseName)
	require.Equal(t, DatabaseModeInherit, m.DesiredState)
	require.Equal(t, OptionDesiredOn, m.CreateIndexDesiredState)
	require.Empty(t, m.ForceLastGoodPlanDesiredState)
	require.Empty(t, m.ForceLastGoodPlanActualState)
	require.Empty(t, m.DropIndexDesiredState)
}

func TestSetThenGetReflectsMerge(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	seedServer(srv)
	ctx := context.Background()

	m, err := a.GetServerSettings(ctx, "rg1", "srv1")
	require.NoError(t, err)
	in := &ServerTuningInput{DesiredState: ServerModeCustom, CreateIndexDesiredState: OptionDesiredOn}
	in.Apply(m)
	updated, err := a.UpdateServerSettings(ctx, m)
	require.NoError(t, err)
	require.Equal(t, ServerModeCustom, updated.DesiredState)
	require.Equal(t, OptionActualOn, updated.CreateIndexActualState)

	got, err := a.GetServerSettings(ctx, "rg1", "srv1")
	require.NoError(t, err)
	require.Equal(t, ServerModeCustom, got.DesiredState)
	require.Equal(t, OptionDesiredOn, got.CreateIndexDesiredState)
	// untouched options keep their remote values
	require.Equal(t, OptionDesiredDefault, got.ForceLastGoodPlanDesiredState)
	require.Equal(t, OptionDesiredDefault, got.DropIndexDesiredState)
}

func TestUnsetInputDoesNotOverwrite(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	path := sqlmgmttest.DatabasePath("sub-1", "rg1", "srv1", "db1")
	srv.Seed(path, sqlmgmt.DatabaseAutomaticTuningProperties{
		DesiredState: "Custom",
		ActualState:  "Custom",
		Options: map[string]sqlmgmt.AutomaticTuningOptions{
			sqlmgmt.OptionDropIndex: {DesiredState: "On", ActualState: "On"},
		},
	})
	_, err := a.UpdateDatabaseSettings(context.Background(), &DatabaseTuning{
		ResourceGroupName:       "rg1",
		ServerName:              "srv1",
		DatabaseName:            "db1",
		CreateIndexDesiredState: OptionDesiredOff,
	})
	require.NoError(t, err)
	res, ok := srv.Resource(path)
	require.True(t, ok)
	require.Equal(t, "Custom", res.DesiredState)
	require.Equal(t, "On", res.Options[sqlmgmt.OptionDropIndex].DesiredState)
	require.Equal(t, "Off", res.Options[sqlmgmt.OptionCreateIndex].DesiredState)
}

func TestUnspecifiedIsNeverSent(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	seedServer(srv)
	_, err := a.UpdateServerSettings(context.Background(), &ServerTuning{
		ResourceGroupName: "rg1",
		ServerName:        "srv1",
		DesiredState:      ServerModeUnspecified,
	})
	require.NoError(t, err)
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodPatch, reqs[0].Method)
	require.Equal(t, sqlmgmt.DefaultServerAPIVersion, reqs[0].APIVersion)
	body := map[string]map[string]interface{}{}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	_, hasDesired := body["properties"]["desiredState"]
	require.False(t, hasDesired)
	_, hasOptions := body["properties"]["options"]
	require.False(t, hasOptions)

	req := DatabaseUpdateRequest(&DatabaseTuning{DesiredState: DatabaseModeUnspecified, DropIndexDesiredState: OptionDesiredDefault})
	require.Empty(t, req.Properties.DesiredState)
	require.Len(t, req.Properties.Options, 1)
	require.Equal(t, "Default", req.Properties.Options[sqlmgmt.OptionDropIndex].DesiredState)
}

func TestClientCreatedLazilyOncePerSubscription(t *testing.T) {
	a, srv, created := newTestAdapter(t)
	seedServer(srv)
	require.Equal(t, 0, *created)
	for i := 0; i < 3; i++ {
		_, err := a.GetServerSettings(context.Background(), "rg1", "srv1")
		require.NoError(t, err)
	}
	require.Equal(t, 1, *created)

	// a second communicator on the same subscription reuses the client
	other := NewAdapter(a.Communicator.profile, nil, a.Communicator.factory)
	_, err := other.GetServerSettings(context.Background(), "rg1", "srv1")
	require.NoError(t, err)
	require.Equal(t, 1, *created)

	// switching subscription rebuilds it
	p2 := *a.Communicator.profile
	p2.SubscriptionID = "sub-2"
	third := NewAdapter(&p2, nil, a.Communicator.factory)
	_, err = third.GetServerSettings(context.Background(), "rg1", "srv1")
	require.True(t, sqlmgmt.IsNotFound(err))
	require.Equal(t, 2, *created)
}

func TestFactoryErrorPropagates(t *testing.T) {
	resetClientCache()
	defer resetClientCache()
	ferr := errors.New("no credentials")
	a := NewAdapter(&config.Profile{SubscriptionID: "s"}, nil, func(context.Context, *config.Profile, *logger.Logger) (*sqlmgmt.Client, error) {
		return nil, ferr
	})
	_, err := a.GetDatabaseSettings(context.Background(), "rg", "srv", "db")
	require.ErrorIs(t, err, ferr)
}

func TestRemoteErrorPropagatesUnchanged(t *testing.T) {
	a, srv, _ := newTestAdapter(t)
	seedServer(srv)
	srv.FailNext(http.StatusConflict, "ServerBusy", "Another operation is in progress.")
	_, err := a.UpdateServerSettings(context.Background(), &ServerTuning{ResourceGroupName: "rg1", ServerName: "srv1", DesiredState: ServerModeAuto})
	var rerr *sqlmgmt.ResponseError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusConflict, rerr.StatusCode)
	require.Equal(t, "ServerBusy", rerr.Code)
	require.Equal(t, "Another operation is in progress.", rerr.Message)
}

func TestDefaultFactoryValidatesProfile(t *testing.T) {
	_, err := DefaultClientFactory(context.Background(), &config.Profile{Endpoint: "http://x", SubscriptionID: "s", MaxConcurrentJobs: 1}, nil)
	require.Error(t, err)
}
