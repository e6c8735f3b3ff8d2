package autotuning

import (
	"context"
	"sync"

	"github.com/rglonek/logger"
	"github.com/sqlctl/sqlctl/pkg/config"
	"github.com/sqlctl/sqlctl/pkg/sqlmgmt"
)

// ClientFactory builds a management client for a profile.
type ClientFactory func(ctx context.Context, profile *config.Profile, log *logger.Logger) (*sqlmgmt.Client, error)

// DefaultClientFactory resolves credentials from the profile and builds a REST client.
func DefaultClientFactory(ctx context.Context, profile *config.Profile, log *logger.Logger) (*sqlmgmt.Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	creds := &sqlmgmt.Credentials{
		AccessToken:   profile.AccessToken,
		AuthorityHost: profile.AuthorityHost,
		TenantID:      profile.TenantID,
		ClientID:      profile.ClientID,
		ClientSecret:  profile.ClientSecret,
	}
	ts, err := creds.TokenSource(ctx, profile.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	return sqlmgmt.NewClient(sqlmgmt.ClientOptions{
		Endpoint:           profile.Endpoint,
		SubscriptionID:     profile.SubscriptionID,
		TokenSource:        ts,
		Timeout:            profile.Timeout,
		ServerAPIVersion:   profile.ServerAPIVersion,
		DatabaseAPIVersion: profile.DatabaseAPIVersion,
		UserAgent:          UserAgent,
		Logger:             log,
	})
}

// UserAgent is sent with every management request.
var UserAgent = "sqlctl"

// the client is shared by every communicator in the process and rebuilt
// whenever a communicator for another subscription or endpoint asks for it
var sharedClient struct {
	sync.Mutex
	key    string
	client *sqlmgmt.Client
}

func resetClientCache() {
	sharedClient.Lock()
	sharedClient.key = ""
	sharedClient.client = nil
	sharedClient.Unlock()
}

// Communicator forwards calls to the management API.
type Communicator struct {
	profile *config.Profile
	log     *logger.Logger
	factory ClientFactory
}

func NewCommunicator(profile *config.Profile, log *logger.Logger, factory ClientFactory) *Communicator {
	if factory == nil {
		factory = DefaultClientFactory
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &Communicator{
		profile: profile,
		log:     log,
		factory: factory,
	}
}

func (c *Communicator) client(ctx context.Context) (*sqlmgmt.Client, error) {
	key := c.profile.SubscriptionID + "|" + c.profile.Endpoint
	sharedClient.Lock()
	defer sharedClient.Unlock()
	if sharedClient.client != nil && sharedClient.key == key {
		return sharedClient.client, nil
	}
	c.log.Debug("Creating management client for subscription %s", c.profile.SubscriptionID)
	cl, err := c.factory(ctx, c.profile, c.log)
	if err != nil {
		return nil, err
	}
	sharedClient.key = key
	sharedClient.client = cl
	return cl, nil
}

func (c *Communicator) GetServerConfiguration(ctx context.Context, resourceGroupName string, serverName string) (*sqlmgmt.ServerAutomaticTuning, error) {
	cl, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	return cl.ServerAutomaticTuning.Get(ctx, resourceGroupName, serverName)
}

func (c *Communicator) UpdateServerConfiguration(ctx context.Context, resourceGroupName string, serverName string, params *sqlmgmt.ServerAutomaticTuning) (*sqlmgmt.ServerAutomaticTuning, error) {
	cl, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	return cl.ServerAutomaticTuning.Update(ctx, resourceGroupName, serverName, params)
}

func (c *Communicator) GetDatabaseConfiguration(ctx context.Context, resourceGroupName string, serverName string, databaseName string) (*sqlmgmt.DatabaseAutomaticTuning, error) {
	cl, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	return cl.DatabaseAutomaticTuning.Get(ctx, resourceGroupName, serverName, databaseName)
}

func (c *Communicator) UpdateDatabaseConfiguration(ctx context.Context, resourceGroupName string, serverName string, databaseName string, params *sqlmgmt.DatabaseAutomaticTuning) (*sqlmgmt.DatabaseAutomaticTuning, error) {
	cl, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	return cl.DatabaseAutomaticTuning.Update(ctx, resourceGroupName, serverName, databaseName, params)
}
