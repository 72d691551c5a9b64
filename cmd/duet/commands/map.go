package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/duet/mapping"
	"github.com/teranos/duet/parser"
)

// MapCmd shows the block-to-text position mapping of an expression
var MapCmd = &cobra.Command{
	Use:   "map [expression]",
	Short: "Show the block-to-text position mapping of an expression",
	Long: `Parse an expression and print the span every element of its tree
occupies in the text. With --at, resolve a single byte offset to the
innermost element covering it instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readExpression(cmd, args)
		if err != nil {
			return err
		}

		tree, err := parser.Parse(source)
		if err != nil {
			return formatParseError(err)
		}
		m := mapping.Create(tree, source)

		if cmd.Flags().Changed("at") {
			offset, _ := cmd.Flags().GetInt("at")
			id, ok := m.FindElementByPosition(offset)
			if !ok {
				fmt.Printf("no element at offset %d\n", offset)
				return nil
			}
			span, _ := m.FindPositionByElement(id)
			fmt.Printf("element %s at [%d,%d): %q\n", id, span.Start, span.End, source[span.Start:span.End])
			return nil
		}

		rows := pterm.TableData{{"ELEMENT", "SPAN", "TEXT"}}
		m.Each(func(id string, span mapping.Span) {
			text := ""
			if span.Start >= 0 && span.End <= len(source) && span.Start < span.End {
				text = source[span.Start:span.End]
			}
			rows = append(rows, []string{
				id,
				fmt.Sprintf("[%d,%d)", span.Start, span.End),
				text,
			})
		})
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	MapCmd.Flags().StringP("file", "f", "", "Read the expression from a file")
	MapCmd.Flags().Int("at", 0, "Resolve a single byte offset instead of listing all spans")
}
