package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .solvewatch.yaml configuration file.
type Config struct {
	Version   int           `yaml:"version" mapstructure:"version"`
	Interval  time.Duration `yaml:"interval" mapstructure:"interval"`
	SSH       SSHConfig     `yaml:"ssh" mapstructure:"ssh"`
	Instances []Instance    `yaml:"instances" mapstructure:"instances"`
}

// SSHConfig holds the connection settings shared by all instance probes.
type SSHConfig struct {
	// User is the remote login name. Defaults to "ubuntu".
	User string `yaml:"user" mapstructure:"user"`

	// IdentityFile is an optional private key path. The SSH agent and the
	// default ~/.ssh keys are tried regardless; this adds one more.
	IdentityFile string `yaml:"identity_file" mapstructure:"identity_file"`

	// DialTimeout bounds the TCP connect to each instance.
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`

	// StrictHostKey controls known_hosts verification. Disable for freshly
	// launched instances whose keys rotate on every boot.
	StrictHostKey bool `yaml:"strict_host_key" mapstructure:"strict_host_key"`
}

// Instance describes one remote compute node running a solver job.
// The Name doubles as the category label: its last underscore-delimited
// token selects the expected total step count.
type Instance struct {
	// ID is the opaque provider identifier (e.g. an EC2 instance id).
	ID string `yaml:"id" mapstructure:"id"`

	// Name is the display name and remote job directory.
	Name string `yaml:"name" mapstructure:"name"`

	// Address is the reachable endpoint. May be empty: an instance without
	// an address is reported as unreachable, not dropped.
	Address string `yaml:"address,omitempty" mapstructure:"address"`

	// Class is the resource class label (e.g. "c8g.48xlarge").
	Class string `yaml:"class,omitempty" mapstructure:"class"`
}

// DefaultInterval is the sampling interval between cycles. The ETA rate math
// divides by this, so the estimator and the cycle loop must share one value.
const DefaultInterval = 6 * time.Minute

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Interval: DefaultInterval,
		SSH: SSHConfig{
			User:          "ubuntu",
			DialTimeout:   10 * time.Second,
			StrictHostKey: true,
		},
	}
}
