package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/config"
	"github.com/teranos/duet/errors"
	"github.com/teranos/duet/parser"
	"github.com/teranos/duet/visual"
)

// ParseCmd parses expression text and reports its structure
var ParseCmd = &cobra.Command{
	Use:   "parse [expression]",
	Short: "Parse expression text and show its structure",
	Long: `Parse an expression and show its canonical rendering, the variables
and functions it references, and optionally the visual block tree as JSON.

The expression is taken from the argument, or from a file with -f.`,
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

		if result := ast.Validate(tree); !result.Valid {
			return errors.Newf("invalid expression: %s", strings.Join(result.Errors, "; "))
		}

		asBlocks, _ := cmd.Flags().GetBool("blocks")
		if asBlocks {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			blocks, warnings := visual.FromIntermediateWithHints(tree, cfg.HintPolicy())
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
			}
			output, err := json.MarshalIndent(blocks, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to encode block tree")
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Printf("canonical: %s\n", ast.Render(tree))
		if vars := ast.Variables(tree); len(vars) > 0 {
			fmt.Printf("variables: %s\n", strings.Join(vars, ", "))
		}
		if funcs := ast.Functions(tree); len(funcs) > 0 {
			fmt.Printf("functions: %s\n", strings.Join(funcs, ", "))
		}
		return nil
	},
}

func init() {
	ParseCmd.Flags().StringP("file", "f", "", "Read the expression from a file")
	ParseCmd.Flags().BoolP("blocks", "b", false, "Output the visual block tree as JSON")
}

// readExpression resolves the expression source from the argument or -f flag
func readExpression(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", file)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) == 0 {
		return "", errors.New("no expression given (pass it as an argument or use -f)")
	}
	return args[0], nil
}

// formatParseError renders structured parse errors with terminal colors
func formatParseError(err error) error {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return errors.New(parseErr.FormatError(parser.ErrorContextTerminal))
	}
	return err
}
