package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// Config represents the CLI configuration.
type Config struct {
	URL         string `json:"url,omitempty"          yaml:"url,omitempty"`
	Email       string `json:"email,omitempty"        yaml:"email,omitempty"`
	Output      string `json:"output,omitempty"       yaml:"output,omitempty"`
	StoragePath string `json:"storage_path,omitempty" yaml:"storage_path,omitempty"`
}

// configKeys maps configuration keys to their field accessors.
var configKeys = map[string]func(*Config) *string{
	"url":          func(c *Config) *string { return &c.URL },
	"email":        func(c *Config) *string { return &c.Email },
	"output":       func(c *Config) *string { return &c.Output },
	"storage_path": func(c *Config) *string { return &c.StoragePath },
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Directus CLI configuration such as the instance URL and output format",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			return render(cmd.OutOrStdout(), outputFormat(), config, func(t *table) {
				t.header("Property", "Value")

				keys := make([]string, 0, len(configKeys))
				for key := range configKeys {
					keys = append(keys, key)
				}

				sort.Strings(keys)

				for _, key := range keys {
					value := *configKeys[key](config)
					if value == "" {
						value = constants.NotAvailable
					}

					t.row(key, value)
				}
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: url, email, output, storage_path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	field, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	if key == "output" && value != "" {
		if err := validateOutput(value); err != nil {
			return err
		}
	}

	*field(config) = value

	return nil
}

func loadConfig() *Config {
	return &Config{
		URL:         viper.GetString("url"),
		Email:       viper.GetString("email"),
		Output:      viper.GetString("output"),
		StoragePath: viper.GetString("storage_path"),
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".directus"), nil
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}

		configFile = filepath.Join(dir, "config.yml")
	}

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	for key, field := range configKeys {
		viper.Set(key, *field(config))
	}

	return nil
}
