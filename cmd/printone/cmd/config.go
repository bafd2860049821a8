package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config types

type Config struct {
	CurrentProfile string         `yaml:"current-profile"`
	Profiles       []NamedProfile `yaml:"profiles"`
}

type NamedProfile struct {
	Name    string        `yaml:"name"`
	Profile ProfileDetail `yaml:"profile"`
}

type ProfileDetail struct {
	APIURL     string `yaml:"api-url,omitempty"`
	APIKey     string `yaml:"api-key,omitempty"`
	APIKeyFile string `yaml:"api-key-file,omitempty"`
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".printone")
}

func configPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}

func loadConfig() (*Config, error) {
	data, err := os.ReadFile(configPath())
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func saveConfig(cfg *Config) error {
	if err := os.MkdirAll(configDir(), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0600)
}

func (c *Config) GetProfile(name string) *NamedProfile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

func (c *Config) SetProfile(name string, p ProfileDetail) {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Profile = p
			return
		}
	}
	c.Profiles = append(c.Profiles, NamedProfile{Name: name, Profile: p})
}

// Config subcommands

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
}

func init() {
	setProfileCmd := &cobra.Command{
		Use:   "set-profile NAME",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			apiURL, _ := cmd.Flags().GetString("api-url")
			apiKey, _ := cmd.Flags().GetString("api-key")
			apiKeyFile, _ := cmd.Flags().GetString("api-key-file")

			if apiKey == "" && apiKeyFile == "" {
				return fmt.Errorf("--api-key or --api-key-file is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				cfg = &Config{}
			}

			cfg.SetProfile(name, ProfileDetail{
				APIURL:     apiURL,
				APIKey:     apiKey,
				APIKeyFile: apiKeyFile,
			})

			if cfg.CurrentProfile == "" {
				cfg.CurrentProfile = name
			}

			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Printf("Profile %q set.\n", name)
			if cfg.CurrentProfile == name {
				fmt.Printf("Current profile is %q.\n", name)
			}
			return nil
		},
	}
	// Local flags shadow the persistent ones of the same name.
	setProfileCmd.Flags().String("api-url", "", "API URL")
	setProfileCmd.Flags().String("api-key", "", "API key")
	setProfileCmd.Flags().String("api-key-file", "", "Path to API key file")

	useProfileCmd := &cobra.Command{
		Use:   "use-profile NAME",
		Short: "Switch to a different profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}

			if cfg.GetProfile(name) == nil {
				return fmt.Errorf("profile %q not found", name)
			}

			cfg.CurrentProfile = name
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Printf("Switched to profile %q.\n", name)
			return nil
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Show the full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}

			for i := range cfg.Profiles {
				if cfg.Profiles[i].Profile.APIKey != "" {
					cfg.Profiles[i].Profile.APIKey = "REDACTED"
				}
			}

			if flagOutput == outputJSON {
				printJSON(cfg)
				return nil
			}

			printYAML(cfg)
			return nil
		},
	}

	configCmd.AddCommand(setProfileCmd, useProfileCmd, viewCmd)
}
