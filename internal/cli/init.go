package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cfdtools/solvewatch/internal/config"
	"github.com/cfdtools/solvewatch/internal/errors"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/internal/ui"
)

var (
	initForce          bool
	initNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .solvewatch.yaml configuration",
	Long: `Create a .solvewatch.yaml in the current directory.

Prompts for SSH settings, the sampling interval, and the first instance.
Instance names double as remote job directories and must end in a wind-speed
category (_2ms, _7ms, _12ms, or _17ms); the category selects the expected
total step count for the ETA math.

Examples:
  solvewatch init
  solvewatch init --force
  solvewatch init --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(initForce, initNonInteractive)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and write defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(force, nonInteractive bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		if nonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if nonInteractive {
		cfg.Instances = []config.Instance{
			{Name: "example_7ms", Address: "203.0.113.10"},
		}
	} else {
		user := cfg.SSH.User
		identityFile := ""
		intervalStr := cfg.Interval.String()
		var instName, instAddress string

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("SSH user").
					Description("Login name on the instances").
					Value(&user).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("SSH user is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Identity file (optional)").
					Description("Private key path; the SSH agent and default keys are tried regardless").
					Placeholder("~/.ssh/fleet.pem").
					Value(&identityFile),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Sampling interval").
					Description("Time between cycles; ETAs are projected from progress over this interval").
					Value(&intervalStr).
					Validate(validateInterval),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("First instance name").
					Description("Display name and remote job directory, ending in _2ms, _7ms, _12ms, or _17ms").
					Placeholder("run_42_7ms").
					Value(&instName).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("instance name is required")
						}
						if _, err := progress.TotalSteps(s); err != nil {
							return fmt.Errorf("name must end in _2ms, _7ms, _12ms, or _17ms")
						}
						return nil
					}),
				huh.NewInput().
					Title("Instance address (optional)").
					Description("Public IP or hostname; leave empty to fill in later").
					Placeholder("203.0.113.10").
					Value(&instAddress),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}

		interval, _ := time.ParseDuration(strings.TrimSpace(intervalStr))
		cfg.SSH.User = strings.TrimSpace(user)
		cfg.SSH.IdentityFile = strings.TrimSpace(identityFile)
		cfg.Interval = interval
		cfg.Instances = []config.Instance{
			{Name: strings.TrimSpace(instName), Address: strings.TrimSpace(instAddress)},
		}
	}

	data, err := yaml.Marshal(configDoc{
		Version:  cfg.Version,
		Interval: cfg.Interval.String(),
		SSH: sshDoc{
			User:          cfg.SSH.User,
			IdentityFile:  cfg.SSH.IdentityFile,
			DialTimeout:   cfg.SSH.DialTimeout.String(),
			StrictHostKey: cfg.SSH.StrictHostKey,
		},
		Instances: cfg.Instances,
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write %s", configPath),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n", ui.StyleSuccess.Render(ui.SymbolSuccess), configPath)
	fmt.Println("Add more instances under the 'instances:' key, then run 'solvewatch report'.")
	return nil
}

// configDoc is the on-disk shape for writing: durations render as strings
// ("6m"), which is what the loader parses back.
type configDoc struct {
	Version   int               `yaml:"version"`
	Interval  string            `yaml:"interval"`
	SSH       sshDoc            `yaml:"ssh"`
	Instances []config.Instance `yaml:"instances"`
}

type sshDoc struct {
	User          string `yaml:"user"`
	IdentityFile  string `yaml:"identity_file,omitempty"`
	DialTimeout   string `yaml:"dial_timeout"`
	StrictHostKey bool   `yaml:"strict_host_key"`
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("use a Go duration like 2m or 6m")
	}
	if d < config.MinInterval {
		return fmt.Errorf("interval must be at least %s", config.MinInterval)
	}
	return nil
}
