// Package config loads the connection profile used to reach the management API.
//
// Values are resolved in order: struct defaults, then the YAML profile file,
// then SQLCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/bestmethod/inslice"
	"github.com/creasty/defaults"
	"github.com/rglonek/envconfig"
	"gopkg.in/yaml.v3"
)

type Profile struct {
	Endpoint           string        `yaml:"endpoint" default:"https://management.azure.com"`
	AuthorityHost      string        `yaml:"authorityHost" default:"https://login.microsoftonline.com"`
	SubscriptionID     string        `yaml:"subscriptionId"`
	TenantID           string        `yaml:"tenantId"`
	ClientID           string        `yaml:"clientId"`
	ClientSecret       string        `yaml:"clientSecret"`
	AccessToken        string        `yaml:"accessToken"`
	Timeout            time.Duration `yaml:"timeout" default:"30s"`
	ServerAPIVersion   string        `yaml:"serverApiVersion" default:"2017-03-01-preview"`
	DatabaseAPIVersion string        `yaml:"databaseApiVersion" default:"2015-05-01-preview"`
	MaxConcurrentJobs  int           `yaml:"maxConcurrentJobs" default:"4"`
}

// profileEnv only receives variables that are actually set, so that the
// environment never resets values coming from the profile file.
type profileEnv struct {
	Endpoint           *string        `envconfig:"SQLCTL_ENDPOINT"`
	AuthorityHost      *string        `envconfig:"SQLCTL_AUTHORITY_HOST"`
	SubscriptionID     *string        `envconfig:"SQLCTL_SUBSCRIPTION_ID"`
	TenantID           *string        `envconfig:"SQLCTL_TENANT_ID"`
	ClientID           *string        `envconfig:"SQLCTL_CLIENT_ID"`
	ClientSecret       *string        `envconfig:"SQLCTL_CLIENT_SECRET"`
	AccessToken        *string        `envconfig:"SQLCTL_ACCESS_TOKEN"`
	Timeout            *time.Duration `envconfig:"SQLCTL_TIMEOUT"`
	ServerAPIVersion   *string        `envconfig:"SQLCTL_SERVER_API_VERSION"`
	DatabaseAPIVersion *string        `envconfig:"SQLCTL_DATABASE_API_VERSION"`
	MaxConcurrentJobs  *int           `envconfig:"SQLCTL_MAX_CONCURRENT_JOBS"`
}

// EnvVars lists the environment variables read into a Profile, with descriptions.
var EnvVars = [][2]string{
	{"SQLCTL_ENDPOINT", "Management API endpoint"},
	{"SQLCTL_AUTHORITY_HOST", "OAuth2 authority host used for client credentials"},
	{"SQLCTL_SUBSCRIPTION_ID", "Subscription ID"},
	{"SQLCTL_TENANT_ID", "Tenant ID used for client credentials"},
	{"SQLCTL_CLIENT_ID", "Client (application) ID used for client credentials"},
	{"SQLCTL_CLIENT_SECRET", "Client secret used for client credentials"},
	{"SQLCTL_ACCESS_TOKEN", "Pre-issued bearer token; takes precedence over client credentials"},
	{"SQLCTL_TIMEOUT", "Request timeout, e.g. 30s"},
	{"SQLCTL_SERVER_API_VERSION", "api-version used for server automatic tuning"},
	{"SQLCTL_DATABASE_API_VERSION", "api-version used for database automatic tuning"},
	{"SQLCTL_MAX_CONCURRENT_JOBS", "Number of background jobs allowed to run at once"},
}

func MakeProfileReader(setDefaults bool, profileYaml io.Reader, parseEnv bool) (*Profile, error) {
	p := new(Profile)
	if setDefaults {
		if err := defaults.Set(p); err != nil {
			return nil, fmt.Errorf("could not set defaults: %s", err)
		}
	}
	if profileYaml != nil {
		err := yaml.NewDecoder(profileYaml).Decode(p)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to unmarshal profile: %s", err)
		}
	}
	if parseEnv {
		env := new(profileEnv)
		if err := envconfig.Process("", env); err != nil {
			return nil, fmt.Errorf("could not process environment variables: %s", err)
		}
		env.apply(p)
	}
	return p, nil
}

// MakeProfile loads the profile from profileFile; a missing file is not an error.
func MakeProfile(setDefaults bool, profileFile string, parseEnv bool) (*Profile, error) {
	var pf *os.File
	var err error
	if profileFile != "" {
		pf, err = os.Open(profileFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not open profile file: %s", err)
		}
		if err == nil {
			defer pf.Close()
		}
	}
	if pf == nil {
		return MakeProfileReader(setDefaults, nil, parseEnv)
	}
	return MakeProfileReader(setDefaults, pf, parseEnv)
}

func (e *profileEnv) apply(p *Profile) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.Endpoint, e.Endpoint)
	setString(&p.AuthorityHost, e.AuthorityHost)
	setString(&p.SubscriptionID, e.SubscriptionID)
	setString(&p.TenantID, e.TenantID)
	setString(&p.ClientID, e.ClientID)
	setString(&p.ClientSecret, e.ClientSecret)
	setString(&p.AccessToken, e.AccessToken)
	setString(&p.ServerAPIVersion, e.ServerAPIVersion)
	setString(&p.DatabaseAPIVersion, e.DatabaseAPIVersion)
	if e.Timeout != nil {
		p.Timeout = *e.Timeout
	}
	if e.MaxConcurrentJobs != nil {
		p.MaxConcurrentJobs = *e.MaxConcurrentJobs
	}
}

// Validate checks that the profile can be used to reach the management API.
func (p *Profile) Validate() error {
	if p.Endpoint == "" {
		return errors.New("profile: endpoint is not set")
	}
	if p.SubscriptionID == "" {
		return errors.New("profile: subscription ID is not set, use --subscription, SQLCTL_SUBSCRIPTION_ID or `config profile --set subscriptionId=...`")
	}
	if p.AccessToken == "" && (p.TenantID == "" || p.ClientID == "" || p.ClientSecret == "") {
		return errors.New("profile: either accessToken or tenantId, clientId and clientSecret must be set")
	}
	if p.MaxConcurrentJobs < 1 {
		return errors.New("profile: maxConcurrentJobs must be at least 1")
	}
	return nil
}

// Save writes the profile as YAML, readable only by the owner as it may hold secrets.
func (p *Profile) Save(profileFile string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(profileFile, data, 0600)
}

// Masked returns a copy safe for display.
func (p *Profile) Masked() *Profile {
	m := *p
	if m.ClientSecret != "" {
		m.ClientSecret = "****"
	}
	if m.AccessToken != "" {
		m.AccessToken = "****"
	}
	return &m
}

// Keys returns the YAML keys of the profile.
func Keys() []string {
	t := reflect.TypeOf(Profile{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys = append(keys, strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0])
	}
	return keys
}

// Set assigns a single value by its YAML key, parsing it into the field's type.
func (p *Profile) Set(key string, value string) error {
	if !inslice.HasString(Keys(), key) {
		return fmt.Errorf("unknown profile key %q, must be one of: %s", key, strings.Join(Keys(), ", "))
	}
	node := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: key},
			{Kind: yaml.ScalarNode, Value: value},
		},
	}
	if err := node.Decode(p); err != nil {
		return fmt.Errorf("invalid value for %s: %s", key, err)
	}
	return nil
}
