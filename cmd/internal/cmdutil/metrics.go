package cmdutil

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var metricsListenAddr string

func RegisterMetricsFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&metricsListenAddr,
		"metrics-listen-addr",
		"",
		"if set, address to serve /metrics and /healthz on while validations run",
	)
}

func metricsHandler(logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Err(err).Msgf("error writing healthz response")
		}
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// RunMetricsServer serves outcome, cache and query metrics in the background
// for the lifetime of the process.
func RunMetricsServer(logger zerolog.Logger) {
	if metricsListenAddr == "" {
		return
	}
	logger.Info().Str("addr", metricsListenAddr).Msgf("serving metrics")
	go func() {
		if err := http.ListenAndServe(metricsListenAddr, metricsHandler(logger)); err != nil {
			logger.Err(err).Msgf("error serving metrics")
		}
	}()
}
