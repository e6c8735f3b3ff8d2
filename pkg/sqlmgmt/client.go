// Package sqlmgmt is a small REST client for the Microsoft.Sql automatic tuning
// management endpoints.
package sqlmgmt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rglonek/logger"
	"golang.org/x/oauth2"
)

const headerClientRequestID = "x-ms-client-request-id"

const providerPath = "/subscriptions/{subscriptionId}/resourceGroups/{resourceGroupName}/providers/Microsoft.Sql/servers/{serverName}"

type ClientOptions struct {
	Endpoint           string
	SubscriptionID     string
	TokenSource        oauth2.TokenSource
	Timeout            time.Duration
	ServerAPIVersion   string
	DatabaseAPIVersion string
	UserAgent          string
	// HTTPClient is the base client used for token requests and, when TokenSource is nil, for API requests.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client groups the operation clients, mirroring a generated management SDK.
type Client struct {
	SubscriptionID          string
	ServerAutomaticTuning   *ServerAutomaticTuningClient
	DatabaseAutomaticTuning *DatabaseAutomaticTuningClient
	httpClient              *resty.Client
	log                     *logger.Logger
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if opts.SubscriptionID == "" {
		return nil, errors.New("subscription ID is required")
	}
	if opts.ServerAPIVersion == "" {
		opts.ServerAPIVersion = DefaultServerAPIVersion
	}
	if opts.DatabaseAPIVersion == "" {
		opts.DatabaseAPIVersion = DefaultDatabaseAPIVersion
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger()
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	hc := base
	if opts.TokenSource != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		hc = oauth2.NewClient(ctx, opts.TokenSource)
	}

	c := &Client{
		SubscriptionID: opts.SubscriptionID,
		httpClient:     resty.NewWithClient(hc),
		log:            opts.Logger,
	}
	c.httpClient.SetBaseURL(strings.TrimSuffix(opts.Endpoint, "/"))
	c.httpClient.SetTimeout(opts.Timeout)
	c.httpClient.SetHeader("Content-Type", "application/json")
	c.httpClient.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		c.httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	c.httpClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader(headerClientRequestID, uuid.NewString())
		return nil
	})

	c.ServerAutomaticTuning = &ServerAutomaticTuningClient{c: c, apiVersion: opts.ServerAPIVersion}
	c.DatabaseAutomaticTuning = &DatabaseAutomaticTuningClient{c: c, apiVersion: opts.DatabaseAPIVersion}
	return c, nil
}

func (c *Client) do(ctx context.Context, method string, path string, pathParams map[string]string, apiVersion string, body interface{}, result interface{}) error {
	for k, v := range pathParams {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingParameter, k)
		}
	}
	req := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("subscriptionId", c.SubscriptionID).
		SetPathParams(pathParams).
		SetQueryParam("api-version", apiVersion).
		SetResult(result)
	if body != nil {
		req.SetBody(body)
	}
	c.log.Debug("%s %s (api-version=%s)", method, path, apiVersion)
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	c.log.Detail("Response %s: %s", resp.Status(), string(resp.Body()))
	if resp.IsError() || resp.StatusCode() >= 300 {
		return newResponseError(resp)
	}
	return nil
}
