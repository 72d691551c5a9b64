package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/errors"
	"github.com/teranos/duet/visual"
)

// RenderCmd renders a visual block tree to expression text
var RenderCmd = &cobra.Command{
	Use:   "render [blocks.json]",
	Short: "Render a visual block tree (JSON) to expression text",
	Long: `Read a visual block tree in the editor's JSON wire format and print
the canonical expression text it renders to. Reads from stdin when no file is
given.

Malformed blocks degrade to neutral placeholders; each degradation is
reported as a warning on stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", args[0])
			}
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Wrap(err, "failed to read stdin")
			}
		}

		var root visual.Node
		if err := json.Unmarshal(data, &root); err != nil {
			return errors.Wrap(err, "failed to decode block tree")
		}
		if !visual.CheckTree(&root) {
			return errors.New("block tree contains a cycle")
		}

		tree, warnings := visual.ToIntermediate(&root)
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
		}
		if tree == nil {
			return errors.New("empty block tree")
		}

		text, renderWarnings := ast.RenderWarn(tree)
		for _, w := range renderWarnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		fmt.Println(text)
		return nil
	},
}
