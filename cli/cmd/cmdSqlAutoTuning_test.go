package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rglonek/logger"
	"github.com/sqlctl/sqlctl/pkg/autotuning"
	"github.com/sqlctl/sqlctl/pkg/config"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt/sqlmgmttest"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T) (*System, *sqlmgmttest.Server) {
	t.Helper()
	srv := sqlmgmttest.NewServer()
	t.Cleanup(srv.Close)
	log := logger.NewLogger()
	log.SetLogLevel(logger.ERROR)
	return &System{
		Logger: log,
		Profile: &config.Profile{
			Endpoint:          srv.URL,
			SubscriptionID:    "sub-1",
			AccessToken:       "tok",
			MaxConcurrentJobs: 2,
		},
	}, srv
}

func seedTestServer(srv *sqlmgmttest.Server, rg string, server string) {
	srv.Seed(sqlmgmttest.ServerPath("sub-1", rg, server), sqlmgmt.DatabaseAutomaticTuningProperties{
		DesiredState: "Auto",
		ActualState:  "Auto",
		Options: map[string]sqlmgmt.AutomaticTuningOptions{
			sqlmgmt.OptionForceLastGoodPlan: {DesiredState: "Default", ActualState: "On"},
			sqlmgmt.OptionCreateIndex:       {DesiredState: "Off", ActualState: "Off"},
			sqlmgmt.OptionDropIndex:         {DesiredState: "Default", ActualState: "Off"},
		},
	})
}

func seedTestDatabase(srv *sqlmgmttest.Server, rg string, server string, db string) {
	srv.Seed(sqlmgmttest.DatabasePath("sub-1", rg, server, db), sqlmgmt.DatabaseAutomaticTuningProperties{
		DesiredState: "Inherit",
		ActualState:  "Auto",
		Options: map[string]sqlmgmt.AutomaticTuningOptions{
			sqlmgmt.OptionForceLastGoodPlan: {DesiredState: "Default", ActualState: "On"},
			sqlmgmt.OptionCreateIndex:       {DesiredState: "Default", ActualState: "Off"},
			sqlmgmt.OptionDropIndex:         {DesiredState: "Default", ActualState: "Off"},
		},
	})
}

func TestServerGetJSON(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestServer(srv, "rg1", "srv1")
	c := &SqlServerAutoTuningGetCmd{}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Output.Output = "json"
	out := &bytes.Buffer{}
	items, err := c.GetAutoTuning(context.Background(), system, nil, out)
	require.NoError(t, err)
	require.Len(t, items, 1)

	decoded := []autotuning.ServerTuning{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "srv1", decoded[0].ServerName)
	require.Equal(t, autotuning.ServerModeAuto, decoded[0].DesiredState)
	require.Equal(t, autotuning.OptionActualOn, decoded[0].ForceLastGoodPlanActualState)
	require.Equal(t, sqlmgmttest.ServerPath("sub-1", "rg1", "srv1"), decoded[0].ResourceID)
}

func TestDatabaseGetText(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestDatabase(srv, "rg1", "srv1", "db1")
	c := &SqlDatabaseAutoTuningGetCmd{}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Target.DatabaseName = "db1"
	c.Output.Output = "text"
	out := &bytes.Buffer{}
	_, err := c.GetAutoTuning(context.Background(), system, nil, out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Database: db1")
	require.Contains(t, out.String(), "DesiredState: Inherit")
	require.Contains(t, out.String(), "CreateIndex: Default/Off")
}

func TestDatabaseSetMerges(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestDatabase(srv, "rg1", "srv1", "db1")
	c := &SqlDatabaseAutoTuningSetCmd{
		DesiredState: "Custom",
		CreateIndex:  "On",
	}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Target.DatabaseName = "db1"
	c.Output.Output = "json"
	items, err := c.SetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, autotuning.DatabaseModeCustom, items[0].DesiredState)
	require.Equal(t, autotuning.OptionDesiredOn, items[0].CreateIndexDesiredState)
	require.Equal(t, autotuning.OptionActualOn, items[0].CreateIndexActualState)
	// untouched options keep their state
	require.Equal(t, autotuning.OptionDesiredDefault, items[0].DropIndexDesiredState)

	res, ok := srv.Resource(sqlmgmttest.DatabasePath("sub-1", "rg1", "srv1", "db1"))
	require.True(t, ok)
	require.Equal(t, "Custom", res.DesiredState)
	require.Equal(t, "On", res.Options[sqlmgmt.OptionCreateIndex].DesiredState)
	require.Equal(t, 1, srv.Count("PATCH"))
}

func TestServerSetUnspecifiedKeepsMode(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestServer(srv, "rg1", "srv1")
	c := &SqlServerAutoTuningSetCmd{
		DesiredState: "Unspecified",
		DropIndex:    "On",
	}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Output.Output = "json"
	items, err := c.SetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, autotuning.ServerModeAuto, items[0].DesiredState)
	require.Equal(t, autotuning.OptionDesiredOn, items[0].DropIndexDesiredState)
	for _, r := range srv.Requests() {
		require.NotContains(t, string(r.Body), "Unspecified")
	}
}

func TestSetDryRunSendsNothing(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestServer(srv, "rg1", "srv1")
	c := &SqlServerAutoTuningSetCmd{
		ForceLastGoodPlan: "Off",
		DryRun:            true,
	}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	out := &bytes.Buffer{}
	items, err := c.SetAutoTuning(context.Background(), system, nil, out)
	require.NoError(t, err)
	require.Nil(t, items)
	require.Equal(t, 0, srv.Count("PATCH"))
	require.Equal(t, 1, srv.Count("GET"))

	decoded := []struct {
		Method  string
		Target  target
		Request sqlmgmt.ServerAutomaticTuning
	}{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "PATCH", decoded[0].Method)
	require.Equal(t, "srv1", decoded[0].Target.ServerName)
	require.Equal(t, "Off", decoded[0].Request.Properties.Options[sqlmgmt.OptionForceLastGoodPlan].DesiredState)

	res, _ := srv.Resource(sqlmgmttest.ServerPath("sub-1", "rg1", "srv1"))
	require.Equal(t, "Default", res.Options[sqlmgmt.OptionForceLastGoodPlan].DesiredState)
}

func TestGetFromInputFlagsWin(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestServer(srv, "rg1", "srv1")
	seedTestServer(srv, "rg2", "srv1")
	stdin := strings.NewReader(`[{"resourceGroupName":"rg1","serverName":"other"}]
{"resourceGroupName":"rg2","serverName":"another"}`)
	c := &SqlServerAutoTuningGetCmd{}
	c.Target.ServerName = "srv1"
	c.Target.Input = "-"
	c.Output.Output = "json"
	items, err := c.GetAutoTuning(context.Background(), system, stdin, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "rg1", items[0].ResourceGroupName)
	require.Equal(t, "rg2", items[1].ResourceGroupName)
	for _, m := range items {
		require.Equal(t, "srv1", m.ServerName)
	}
}

func TestGetOutputFeedsSet(t *testing.T) {
	system, srv := newTestSystem(t)
	seedTestDatabase(srv, "rg1", "srv1", "db1")
	seedTestDatabase(srv, "rg1", "srv1", "db2")

	get := &SqlDatabaseAutoTuningGetCmd{}
	get.Target.Input = "-"
	get.Output.Output = "json"
	out := &bytes.Buffer{}
	_, err := get.GetAutoTuning(context.Background(), system, strings.NewReader(`{"resourceGroupName":"rg1","serverName":"srv1","databaseName":"db1"}{"resourceGroupName":"rg1","serverName":"srv1","databaseName":"db2"}`), out)
	require.NoError(t, err)

	set := &SqlDatabaseAutoTuningSetCmd{DropIndex: "Off"}
	set.Target.Input = "-"
	set.Output.Output = "json"
	items, err := set.SetAutoTuning(context.Background(), system, out, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "db1", items[0].DatabaseName)
	require.Equal(t, "db2", items[1].DatabaseName)
	require.Equal(t, 2, srv.Count("PATCH"))
}

func TestMissingIdentifiersFailBeforeAnyRequest(t *testing.T) {
	system, srv := newTestSystem(t)
	c := &SqlDatabaseAutoTuningSetCmd{CreateIndex: "On"}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	_, err := c.SetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.ErrorContains(t, err, "database name is required")

	c.Target.Input = "-"
	stdin := strings.NewReader(`[{"resourceGroupName":"rg1","serverName":"srv1","databaseName":"db1"},{"resourceGroupName":"rg1","databaseName":"db2"}]`)
	c.Target.ServerName = ""
	_, err = c.SetAutoTuning(context.Background(), system, stdin, &bytes.Buffer{})
	require.ErrorContains(t, err, "input record 2")
	require.Empty(t, srv.Requests())
}

func TestRemoteNotFound(t *testing.T) {
	system, _ := newTestSystem(t)
	c := &SqlServerAutoTuningGetCmd{}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "missing"
	_, err := c.GetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.Error(t, err)
	require.True(t, sqlmgmt.IsNotFound(err))
}

func TestSubscriptionOverride(t *testing.T) {
	system, srv := newTestSystem(t)
	srv.Seed(sqlmgmttest.ServerPath("sub-2", "rg1", "srv1"), sqlmgmt.DatabaseAutomaticTuningProperties{DesiredState: "Custom"})
	c := &SqlServerAutoTuningGetCmd{}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Target.Subscription = "sub-2"
	c.Output.Output = "json"
	items, err := c.GetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, autotuning.ServerModeCustom, items[0].DesiredState)
	require.Equal(t, "sub-1", system.Profile.SubscriptionID)
}

func TestUnknownOutputFormat(t *testing.T) {
	system, srv := newTestSystem(t)
	c := &SqlServerAutoTuningGetCmd{}
	c.Target.ResourceGroupName = "rg1"
	c.Target.ServerName = "srv1"
	c.Output.Output = "xml"
	_, err := c.GetAutoTuning(context.Background(), system, nil, &bytes.Buffer{})
	require.ErrorContains(t, err, "unknown output format")
	require.Empty(t, srv.Requests())
}

func TestSetAsJobRecordsFailures(t *testing.T) {
	jobs.Lock()
	jobs.queue = nil
	jobs.Unlock()
	t.Cleanup(func() {
		jobs.Lock()
		jobs.queue = nil
		jobs.Unlock()
	})

	system, srv := newTestSystem(t)
	seedTestServer(srv, "rg1", "srv1")
	c := &SqlServerAutoTuningSetCmd{
		CreateIndex: "On",
		AsJob:       true,
	}
	c.Target.Input = "-"
	c.Output.Output = "json"
	stdin := strings.NewReader(`[{"resourceGroupName":"rg1","serverName":"srv1"},{"resourceGroupName":"rg1","serverName":"missing"}]`)
	out := &bytes.Buffer{}
	items, err := c.SetAutoTuning(context.Background(), system, stdin, out)
	require.NoError(t, err)
	require.Nil(t, items)
	waitBackgroundJobs()

	failed := FailedJobs()
	require.Len(t, failed, 1)
	require.Contains(t, out.String(), failed[0]+" rg1/missing")
	require.Contains(t, out.String(), `"serverName":"srv1"`)
	require.Equal(t, 1, srv.Count("PATCH"))
}

func TestBindTargets(t *testing.T) {
	list, err := bindTargets(target{ResourceGroupName: "rg", ServerName: "srv", DatabaseName: "db"}, "", nil, false)
	require.NoError(t, err)
	require.Equal(t, []target{{ResourceGroupName: "rg", ServerName: "srv", DatabaseName: "db"}}, list)

	list, err = bindTargets(target{DatabaseName: "db9"}, "-", strings.NewReader(`{"resourceGroupName":"rg","serverName":"srv","databaseName":"db1"}`), true)
	require.NoError(t, err)
	require.Equal(t, "db9", list[0].DatabaseName)

	list, err = bindTargets(target{}, "-", strings.NewReader(`{"resourceGroupName":"rg","serverName":"srv","databaseName":"db1"}`), false)
	require.NoError(t, err)
	require.Empty(t, list[0].DatabaseName)

	_, err = bindTargets(target{}, "-", strings.NewReader(""), false)
	require.ErrorContains(t, err, "no records")

	_, err = bindTargets(target{}, "-", strings.NewReader("{"), false)
	require.ErrorContains(t, err, "could not parse input")
}
