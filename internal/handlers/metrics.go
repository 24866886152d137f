package handlers

import (
	"fmt"
	"net/http"

	"medialist/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promErrorLog routes exposition errors into the application log.
type promErrorLog struct{}

func (promErrorLog) Println(v ...any) {
	logging.Error("metrics exposition: %s", fmt.Sprint(v...))
}

// MetricsHandler returns the Prometheus exposition handler for the default
// registry. A failing collector is logged and skipped rather than failing
// the whole scrape.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:          promErrorLog{},
			ErrorHandling:     promhttp.ContinueOnError,
			EnableOpenMetrics: true,
		}),
	)
}
