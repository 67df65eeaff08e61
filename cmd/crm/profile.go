package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// ProfilesConfig holds all named server profiles and tracks which one is active.
type ProfilesConfig struct {
	Active   string             `toml:"active"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Profile is a named server connection.
type Profile struct {
	URL         string `toml:"url"`
	Token       string `toml:"token,omitempty"`
	NATSURL     string `toml:"nats_url,omitempty"`
	Description string `toml:"description,omitempty"`
}

func profileConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "crmd")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.toml"), nil
}

func loadProfilesConfig() (ProfilesConfig, error) {
	path, err := profileConfigPath()
	if err != nil {
		return ProfilesConfig{}, err
	}
	var cfg ProfilesConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return ProfilesConfig{Profiles: map[string]Profile{}}, nil
		}
		return ProfilesConfig{}, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

func saveProfilesConfig(cfg ProfilesConfig) error {
	path, err := profileConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Cached active profile values, loaded once per process.
var (
	profileOnce      sync.Once
	cachedProfileURL string
	cachedToken      string
	cachedNATSURL    string
)

func loadActiveProfileOnce() {
	profileOnce.Do(func() {
		cfg, err := loadProfilesConfig()
		if err != nil || cfg.Active == "" {
			return
		}
		p, ok := cfg.Profiles[cfg.Active]
		if !ok {
			return
		}
		cachedProfileURL = p.URL
		cachedToken = p.Token
		cachedNATSURL = p.NATSURL
	})
}

func activeProfileURL() string     { loadActiveProfileOnce(); return cachedProfileURL }
func activeProfileToken() string   { loadActiveProfileOnce(); return cachedToken }
func activeProfileNATSURL() string { loadActiveProfileOnce(); return cachedNATSURL }

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage named server profiles",
	GroupID: "system",
	// Skip client construction, all profile subcommands are local file operations.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or update a named profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		token, _ := cmd.Flags().GetString("token")
		natsURL, _ := cmd.Flags().GetString("nats")
		desc, _ := cmd.Flags().GetString("description")

		cfg, err := loadProfilesConfig()
		if err != nil {
			return err
		}
		cfg.Profiles[name] = Profile{URL: url, Token: token, NATSURL: natsURL, Description: desc}
		if err := saveProfilesConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("profile %q added (%s)\n", name, url)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := loadProfilesConfig()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		delete(cfg.Profiles, name)
		if cfg.Active == name {
			cfg.Active = ""
		}
		if err := saveProfilesConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("profile %q removed\n", name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfilesConfig()
		if err != nil {
			return err
		}
		if len(cfg.Profiles) == 0 {
			fmt.Println("no profiles configured")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tURL\tTOKEN\tDESCRIPTION")
		for name, p := range cfg.Profiles {
			marker := "  "
			if name == cfg.Active {
				marker = "* "
			}
			token := ""
			if p.Token != "" {
				if len(p.Token) > 8 {
					token = p.Token[:8] + "..."
				} else {
					token = p.Token
				}
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, name, p.URL, token, p.Description)
		}
		return w.Flush()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the active profile (no args clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfilesConfig()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			cfg.Active = ""
			if err := saveProfilesConfig(cfg); err != nil {
				return err
			}
			fmt.Println("active profile cleared")
			return nil
		}
		name := args[0]
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		cfg.Active = name
		if err := saveProfilesConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("active profile set to %q\n", name)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show details for a profile (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfilesConfig()
		if err != nil {
			return err
		}

		name := cfg.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active profile; specify a name or run 'crm profile use <name>'")
		}

		p, ok := cfg.Profiles[name]
		if !ok {
			return fmt.Errorf("profile %q not found", name)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		active := ""
		if name == cfg.Active {
			active = " (active)"
		}
		fmt.Fprintf(w, "name:\t%s%s\n", name, active)
		if p.Description != "" {
			fmt.Fprintf(w, "description:\t%s\n", p.Description)
		}
		fmt.Fprintf(w, "url:\t%s\n", p.URL)
		if p.Token != "" {
			masked := p.Token
			if len(masked) > 8 {
				masked = masked[:8] + strings.Repeat("*", len(masked)-8)
			}
			fmt.Fprintf(w, "token:\t%s\n", masked)
		}
		if p.NATSURL != "" {
			fmt.Fprintf(w, "nats_url:\t%s\n", p.NATSURL)
		}
		return w.Flush()
	},
}

func init() {
	profileAddCmd.Flags().String("token", "", "bearer token for authentication")
	profileAddCmd.Flags().String("nats", "", "NATS URL for event streaming")
	profileAddCmd.Flags().String("description", "", "human-readable description of the profile")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileShowCmd)
}
