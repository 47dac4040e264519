package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chatsearch/internal/usecase"
)

var (
	chatSession string
	chatWatch   string
	chatVerbose bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the catalog",
	Long: `Start an interactive session. Type a question per line; comparison
questions ("iphone vs samsung") print a comparison table.

Commands:
  /reset   forget the conversation
  /exit    quit

Examples:
  chatsearch chat
  chatsearch chat --watch ./catalog   # reload when catalog files change`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session id (default: a new one)")
	chatCmd.Flags().StringVar(&chatWatch, "watch", "", "catalog directory to watch for changes")
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "print phase timings")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	rt, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}

	g, gctx := errgroup.WithContext(ctx)
	if chatWatch != "" {
		g.Go(func() error { return rt.watch(gctx, chatWatch) })
	}
	g.Go(func() error {
		defer stop()
		return chatLoop(gctx, rt.engine, session, os.Stdin, os.Stdout, chatVerbose)
	})
	return g.Wait()
}

// chatLoop answers one line at a time until in is exhausted, /exit is typed
// or ctx is done.
func chatLoop(ctx context.Context, engine *usecase.Engine, session string, in io.Reader, out io.Writer, verbose bool) error {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	fmt.Fprintf(out, "session %s, /exit to quit\n", session)
	for {
		fmt.Fprint(out, "> ")

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := engine.ResetSession(ctx, session); err != nil {
				return err
			}
			fmt.Fprintln(out, "conversation cleared")
			continue
		}

		if engine.IsComparisonQuery(line) {
			result, err := engine.CompareProducts(ctx, line, "", 0)
			if err != nil {
				return err
			}
			printComparison(out, result)
			continue
		}

		result, err := engine.Search(ctx, session, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printResult(out, result, 3, verbose)
	}
}
