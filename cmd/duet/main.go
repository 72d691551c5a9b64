package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/duet/cmd/duet/commands"
	"github.com/teranos/duet/config"
	"github.com/teranos/duet/logger"
)

var rootCmd = &cobra.Command{
	Use:   "duet",
	Short: "duet - cross-representation expression synchronization",
	Long: `duet keeps a visual block editor and a text editor in lockstep over
the same expression: blocks compile to an intermediate tree, the tree renders
to canonical text, text parses back, and a position mapping ties every block
to its span in the text.

Available commands:
  parse   - Parse expression text and show its structure
  render  - Render a visual block tree (JSON) to expression text
  map     - Show the block-to-text position mapping of an expression
  watch   - Watch an expression file and resync it on every change
  config  - Manage duet configuration
  version - Show version information

Examples:
  duet parse "price * qty > 100"
  duet parse --blocks "1 + 2 * 3"
  duet render blocks.json
  duet map "age > 18 and is_member"
  duet watch expr.txt`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		cfg, err := config.Load()
		jsonOutput := false
		if err == nil {
			jsonOutput = cfg.Log.JSON
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
		}
		if err := logger.InitializeWithVerbosity(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.MapCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
