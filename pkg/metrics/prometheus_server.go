package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propinvest/pkg/contextx"
	"propinvest/pkg/logx"
)

const httpServerReadHeaderTimeout = 5 * time.Second

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type PrometheusServer struct {
	listenAddress string
	registerer    prometheus.Registerer
	gatherer      prometheus.Gatherer
	buildInfo     prometheus.Labels
}

func NewPrometheusServer(
	listenAddress string,
) PrometheusServer {
	return PrometheusServer{
		listenAddress: listenAddress,
		registerer:    prometheus.DefaultRegisterer,
		gatherer:      prometheus.DefaultGatherer,
	}
}

// WithRegistry отдаёт метрики из отдельного реестра вместо глобального.
func (p PrometheusServer) WithRegistry(registry *prometheus.Registry) PrometheusServer {
	p.registerer = registry
	p.gatherer = registry

	return p
}

// WithBuildInfo публикует gauge build_info со значением 1 и метками name/version.
func (p PrometheusServer) WithBuildInfo(name, version string) PrometheusServer {
	p.buildInfo = prometheus.Labels{"name": name, "version": version}

	return p
}

func (p PrometheusServer) Handler() (http.Handler, error) {
	if p.buildInfo != nil {
		buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "build_info",
			Help:        "Build information of the running service.",
			ConstLabels: p.buildInfo,
		})
		buildInfo.Set(1)

		err := p.registerer.Register(buildInfo)

		var already prometheus.AlreadyRegisteredError
		if err != nil && !errors.As(err, &already) {
			return nil, fmt.Errorf("registerer.Register: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	return mux, nil
}

func (p PrometheusServer) Run(ctx context.Context) error {
	handler, err := p.Handler()
	if err != nil {
		return fmt.Errorf("p.Handler: %w", err)
	}

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              p.listenAddress,
		Handler:           handler,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		if err := httpServer.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger(ctx).Error("httpServer.Shutdown", logx.Error(err))
		}
	}()

	logger(ctx).Info("prometheus server started", slog.String("address", p.listenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer.ListenAndServe: %w", err)
	}

	logger(ctx).Info("prometheus server stopped")

	return nil
}
