// Package config provides configuration for the kubesecrets controllers.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/lukaszraczylo/kubesecrets/pkg/constants"
	"github.com/lukaszraczylo/kubesecrets/pkg/filter"
)

// Config holds all configuration for the controllers.
type Config struct {
	// MetricsBindAddress is the address for the metrics endpoint
	MetricsBindAddress string `yaml:"metricsBindAddress"`
	// HealthProbeBindAddress is the address for health probes
	HealthProbeBindAddress string `yaml:"healthProbeBindAddress"`

	// FieldManager is the server-side apply field manager for propagated secrets
	FieldManager string `yaml:"fieldManager"`

	// ExcludedNamespaces never receive propagated secrets (in addition to the defaults)
	ExcludedNamespaces []string `yaml:"excludedNamespaces"`
	// IncludedNamespaces restricts propagation to namespaces matching these globs (empty = all)
	IncludedNamespaces []string `yaml:"includedNamespaces"`

	// LeaderElection configuration
	LeaderElection LeaderElectionConfig `yaml:"leaderElection"`

	// RetryInterval is the fixed delay before a failed reconciliation is retried
	RetryInterval time.Duration `yaml:"retryInterval"`

	// WorkerThreads is the number of concurrent reconciliation workers per controller
	WorkerThreads int `yaml:"workerThreads"`

	// EnableSync runs the secret propagation controllers
	EnableSync bool `yaml:"enableSync"`
	// EnableTemplate runs the SecretTemplate controllers
	EnableTemplate bool `yaml:"enableTemplate"`
	// DryRun mode logs what would happen without actually making changes
	DryRun bool `yaml:"dryRun"`
	// UncachedLists lists secrets and namespaces straight from the API server.
	// Trades API load for freshness right after label changes.
	UncachedLists bool `yaml:"uncachedLists"`
}

// LeaderElectionConfig holds leader election settings.
type LeaderElectionConfig struct {
	// ResourceName is the name of the leader election resource
	ResourceName string `yaml:"resourceName"`
	// ResourceNamespace is the namespace for the leader election resource
	ResourceNamespace string `yaml:"resourceNamespace"`

	// LeaseDuration is the lease duration
	LeaseDuration time.Duration `yaml:"leaseDuration"`
	// RenewDeadline is the renew deadline
	RenewDeadline time.Duration `yaml:"renewDeadline"`
	// RetryPeriod is the retry period
	RetryPeriod time.Duration `yaml:"retryPeriod"`

	// Enabled enables leader election
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		MetricsBindAddress:     ":8080",
		HealthProbeBindAddress: ":8081",
		FieldManager:           constants.FieldManager,
		RetryInterval:          constants.DefaultRetryInterval,
		WorkerThreads:          1,
		EnableSync:             true,
		EnableTemplate:         true,
		LeaderElection: LeaderElectionConfig{
			ResourceName:  constants.LeaderElectionID,
			LeaseDuration: 15 * time.Second,
			RenewDeadline: 10 * time.Second,
			RetryPeriod:   2 * time.Second,
		},
	}
}

// LoadFile overlays the YAML document at path onto c.
// Keys missing from the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return c.Load(data)
}

// Load overlays a YAML document onto c.
func (c *Config) Load(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// AllExcludedNamespaces returns the default system exclusions followed by the
// configured ones, without duplicates.
func (c *Config) AllExcludedNamespaces() []string {
	seen := make(map[string]bool, len(constants.DefaultExcludedNamespaces)+len(c.ExcludedNamespaces))
	out := make([]string, 0, len(constants.DefaultExcludedNamespaces)+len(c.ExcludedNamespaces))
	for _, group := range [][]string{constants.DefaultExcludedNamespaces, c.ExcludedNamespaces} {
		for _, ns := range group {
			if ns == "" || seen[ns] {
				continue
			}
			seen[ns] = true
			out = append(out, ns)
		}
	}
	return out
}

// NamespaceFilter builds the operator-wide namespace filter.
func (c *Config) NamespaceFilter() (*filter.NamespaceFilter, error) {
	return filter.NewNamespaceFilter(c.AllExcludedNamespaces(), c.IncludedNamespaces)
}

// Validate checks if the configuration is valid. All problems are reported at once.
func (c *Config) Validate() error {
	allErrs := &multierror.Error{
		ErrorFormat: errorFormatWithPrefix("invalid configuration"),
	}

	if !c.EnableSync && !c.EnableTemplate {
		allErrs = multierror.Append(allErrs, errors.New("at least one of the sync and template controllers must be enabled"))
	}
	if c.RetryInterval <= 0 {
		allErrs = multierror.Append(allErrs, fmt.Errorf("retryInterval must be positive, got %s", c.RetryInterval))
	}
	if c.WorkerThreads < 1 {
		allErrs = multierror.Append(allErrs, fmt.Errorf("workerThreads must be at least 1, got %d", c.WorkerThreads))
	}
	if c.FieldManager == "" {
		allErrs = multierror.Append(allErrs, errors.New("fieldManager must not be empty"))
	}
	if len(c.IncludedNamespaces) > 0 {
		if _, err := filter.NewGlobList(strings.Join(c.IncludedNamespaces, " ")); err != nil {
			allErrs = multierror.Append(allErrs, fmt.Errorf("includedNamespaces: %w", err))
		}
	}

	if le := c.LeaderElection; le.Enabled {
		if le.ResourceName == "" {
			allErrs = multierror.Append(allErrs, errors.New("leaderElection.resourceName must not be empty"))
		}
		if le.RetryPeriod <= 0 {
			allErrs = multierror.Append(allErrs, errors.New("leaderElection.retryPeriod must be positive"))
		}
		if le.RenewDeadline <= le.RetryPeriod {
			allErrs = multierror.Append(allErrs, errors.New("leaderElection.renewDeadline must be greater than retryPeriod"))
		}
		if le.LeaseDuration <= le.RenewDeadline {
			allErrs = multierror.Append(allErrs, errors.New("leaderElection.leaseDuration must be greater than renewDeadline"))
		}
	}

	return allErrs.ErrorOrNil()
}

func errorFormatWithPrefix(prefix string) multierror.ErrorFormatFunc {
	return func(errs []error) string {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return fmt.Sprintf("%s: %s", prefix, strings.Join(msgs, "; "))
	}
}
