package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/teranos/duet/config"
	"github.com/teranos/duet/errors"
)

// ConfigCmd manages duet configuration
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage duet configuration",
	Long: `Inspect and manage the duet configuration. Configuration is merged
from ~/.duet/duet.toml, the nearest duet.toml up the directory tree, and
DUET_* environment variables, in that precedence order.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to encode config")
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default duet.toml",
	Long:  `Write a fully-defaulted config file. Defaults to ./duet.toml; refuses to overwrite an existing file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "duet.toml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}
