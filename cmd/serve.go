package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/metrics"
	"github.com/katalog-cli/katalog/query"
	"github.com/katalog-cli/katalog/server"
	"github.com/katalog-cli/katalog/telemetry"
	"github.com/katalog-cli/katalog/util"
	"github.com/katalog-cli/katalog/warmer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "Address to listen on")
	lo.Must0(viper.BindPFlag(key.ServerAddress, serveCmd.Flags().Lookup("address")))

	serveCmd.Flags().BoolP("warm", "w", false, "Refresh popular searches in the background")
	lo.Must0(viper.BindPFlag(key.WarmerEnabled, serveCmd.Flags().Lookup("warm")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve the catalog as a JSON API.

Prometheus metrics are exposed on /metrics. Traces are exported when
OTEL_EXPORTER_OTLP_ENDPOINT is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := telemetry.Init(ctx, constant.Katalog)
		handleErr(err)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warnf("telemetry shutdown: %s", err)
			}
		}()

		metrics.Register(prometheus.DefaultRegisterer)

		catalog := mustPool()
		defer catalog.Registry().Close()

		history := query.History{}

		if viper.GetBool(key.WarmerEnabled) {
			w := warmer.New(catalog, history, warmer.OptionsFromConfig())
			handleErr(w.Start(ctx))
			defer w.Stop()
		}

		opts := server.OptionsFromConfig()
		srv := server.New(catalog, server.WithHistory(history), server.WithOptions(opts))

		fmt.Printf("%s serving %s on %s\n", icon.Get(icon.Success), util.Quantify(catalog.Registry().Len(), "source", "sources"), opts.Address)
		handleErr(srv.ListenAndServe(ctx))
	},
}
