package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chatsearch/internal/server"
)

var (
	serveAddr  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search engine over HTTP",
	Long: `Start the HTTP API on the configured address.

Routes:
  POST   /v1/sessions               new session id
  POST   /v1/sessions/{id}/search   {"query": "..."}
  GET    /v1/sessions/{id}          conversation state
  DELETE /v1/sessions/{id}          forget the conversation
  GET    /v1/items                  catalog
  POST   /v1/items                  add or update items
  GET    /v1/compare?q=&category=&max=
  GET    /v1/retrieve?q=`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "catalog directory to watch for changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	rt, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := GetConfig()
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(rt.engine, logger, cfg.Server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if serveWatch != "" {
		g.Go(func() error { return rt.watch(gctx, serveWatch) })
	}
	g.Go(func() error {
		logger.Info().Str("addr", addr).Int("items", len(rt.engine.Items())).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
