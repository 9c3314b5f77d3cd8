package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/grokline/internal/parser"
	"github.com/atikulmunna/grokline/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pattern over HTTP and WebSocket",
	Long: `Compile the pattern once and serve it:

  POST /api/parse   lines as text/plain, a JSON array, or {"lines": [...]}
  GET  /ws          one text message per line, one JSON result per message
  GET  /metrics     Prometheus counters
  GET  /healthz     liveness

Examples:
  grokline serve -p '%{COMBINEDAPACHELOG}' --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	bindFlags(serveCmd.Flags(), "addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// The pattern must compile before anything listens.
	ex, err := parser.NewExtractor(parser.Options{
		Pattern:     viper.GetString("pattern"),
		PatternsDir: viper.GetString("patterns"),
		NoDefaults:  viper.GetBool("no-patterns"),
	})
	if err != nil {
		return err
	}

	// --- Set up context with graceful shutdown ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, styleInfo.Render("grokline shutting down gracefully..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	addr := viper.GetString("addr")
	fmt.Fprintf(os.Stderr, "%s serving %s on %s\n", styleOK.Render("grokline"), styleInfo.Render(ex.Pattern()), addr)
	logrus.WithFields(logrus.Fields{
		"addr":    addr,
		"pattern": ex.Pattern(),
	}).Info("starting server")

	if err := server.New(ex, reg).Start(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
