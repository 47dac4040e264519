package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	compareQuery    string
	compareCategory string
	compareMax      int
	compareJSON     bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare catalog items side by side",
	Long: `Line up the items a question mentions, attribute by attribute, and name
the cheapest and the recommended one.

Examples:
  chatsearch compare -q "iphone vs samsung"
  chatsearch compare -q "hp mana yang lebih bagus" --category smartphone --max 4`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringVarP(&compareQuery, "query", "q", "", "comparison question (required)")
	compareCmd.Flags().StringVar(&compareCategory, "category", "", "only compare items of this category")
	compareCmd.Flags().IntVar(&compareMax, "max", 0, "maximum items (default from config)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output as JSON")
	compareCmd.MarkFlagRequired("query")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.engine.CompareProducts(ctx, compareQuery, compareCategory, compareMax)
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	if compareJSON {
		return printJSON(os.Stdout, result)
	}
	printComparison(os.Stdout, result)
	return nil
}
