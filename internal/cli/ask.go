package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	askQuery   string
	askSession string
	askTop     int
	askJSON    bool
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask one question against the catalog",
	Long: `Ask a single question. The conversation is stored with the catalog, so a
follow-up in the same --session can refer back to the previous answer.

Examples:
  chatsearch ask -q "ada iphone?" --session demo
  chatsearch ask -q "harganya berapa" --session demo
  chatsearch ask -q "hp android murah" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question (required)")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id (default: a new one)")
	askCmd.Flags().IntVarP(&askTop, "top", "k", 3, "number of results to print")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print phase timings")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	session := askSession
	if session == "" {
		session = uuid.NewString()
	}

	result, err := rt.engine.Search(ctx, session, askQuery)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if askJSON {
		return printJSON(os.Stdout, result)
	}
	printResult(os.Stdout, result, askTop, askVerbose)
	if askSession == "" {
		fmt.Printf("\nsession: %s\n", session)
	}
	return nil
}
