package sqlmgmt

import (
	"context"
	"net/http"
)

const (
	serverAutomaticTuningPath   = providerPath + "/automaticTuning/current"
	databaseAutomaticTuningPath = providerPath + "/databases/{databaseName}/automaticTuning/current"
)

type ServerAutomaticTuningClient struct {
	c          *Client
	apiVersion string
}

// Get retrieves the automatic tuning settings of a server.
func (s *ServerAutomaticTuningClient) Get(ctx context.Context, resourceGroupName string, serverName string) (*ServerAutomaticTuning, error) {
	result := new(ServerAutomaticTuning)
	err := s.c.do(ctx, http.MethodGet, serverAutomaticTuningPath, map[string]string{
		"resourceGroupName": resourceGroupName,
		"serverName":        serverName,
	}, s.apiVersion, nil, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update patches the automatic tuning settings of a server and returns the resulting state.
func (s *ServerAutomaticTuningClient) Update(ctx context.Context, resourceGroupName string, serverName string, parameters *ServerAutomaticTuning) (*ServerAutomaticTuning, error) {
	result := new(ServerAutomaticTuning)
	err := s.c.do(ctx, http.MethodPatch, serverAutomaticTuningPath, map[string]string{
		"resourceGroupName": resourceGroupName,
		"serverName":        serverName,
	}, s.apiVersion, parameters, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type DatabaseAutomaticTuningClient struct {
	c          *Client
	apiVersion string
}

// Get retrieves the automatic tuning settings of a database.
func (d *DatabaseAutomaticTuningClient) Get(ctx context.Context, resourceGroupName string, serverName string, databaseName string) (*DatabaseAutomaticTuning, error) {
	result := new(DatabaseAutomaticTuning)
	err := d.c.do(ctx, http.MethodGet, databaseAutomaticTuningPath, map[string]string{
		"resourceGroupName": resourceGroupName,
		"serverName":        serverName,
		"databaseName":      databaseName,
	}, d.apiVersion, nil, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update patches the automatic tuning settings of a database and returns the resulting state.
func (d *DatabaseAutomaticTuningClient) Update(ctx context.Context, resourceGroupName string, serverName string, databaseName string, parameters *DatabaseAutomaticTuning) (*DatabaseAutomaticTuning, error) {
	result := new(DatabaseAutomaticTuning)
	err := d.c.do(ctx, http.MethodPatch, databaseAutomaticTuningPath, map[string]string{
		"resourceGroupName": resourceGroupName,
		"serverName":        serverName,
		"databaseName":      databaseName,
	}, d.apiVersion, parameters, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}
