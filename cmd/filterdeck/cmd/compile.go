package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filterdeck/filterdeck/internal/preview"
	"github.com/filterdeck/filterdeck/internal/translator"
	"github.com/filterdeck/filterdeck/pkg/filter"
)

var compileCmd = &cobra.Command{
	Use:   "compile <filter.json>",
	Short: "Compile a filter document to an OpenSearch query",
	Long: `Compile reads a filter document from a JSON file and prints the
compiled OpenSearch query along with its textual preview.

A JSON array is treated as a flat filter list; a JSON object is treated
as a filter tree (either a full {"id","root"} document or a bare node).`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var compactOutput bool

func init() {
	compileCmd.Flags().BoolVar(&compactOutput, "compact", false, "print the query on one line")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read filter file: %w", err)
	}

	trimmed := bytes.TrimLeftFunc(data, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(trimmed) == 0 {
		return fmt.Errorf("filter file is empty")
	}

	tr := translator.NewOpenSearchTranslator()

	var query map[string]any
	var text string
	if trimmed[0] == '[' {
		list, err := filter.ParseFlatList(data)
		if err != nil {
			return err
		}
		query = tr.TranslateFlat(list)
		text = preview.Flat(list)
	} else {
		tree, err := parseTreeDocument(data)
		if err != nil {
			return err
		}
		query = tr.Translate(tree)
		text = preview.Tree(tree.Root)
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	if !compactOutput {
		out.SetIndent("", "  ")
	}
	if err := out.Encode(query); err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// parseTreeDocument accepts either a full tree document or a bare node.
func parseTreeDocument(data []byte) (filter.Tree, error) {
	var probe struct {
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Root != nil {
		return filter.ParseTree(data)
	}
	node, err := filter.ParseNode(data)
	if err != nil {
		return filter.Tree{}, err
	}
	return filter.Tree{Root: node}, nil
}
