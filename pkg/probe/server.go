package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"propinvest/pkg/contextx"
	"propinvest/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	httpServerReadHeaderTimeout = 5 * time.Second
	readinessCheckTimeout       = 2 * time.Second
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Check проверка зависимости для /ready, например ping базы.
type Check func(ctx context.Context) error

type Server struct {
	listenAddress string
	options       Options
	state         []byte
	checks        map[string]Check
}

type Options struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type readyState struct {
	Options

	Failed map[string]string `json:"failed,omitempty"`
}

func NewServer(
	listenAddress string,
	options Options,
) Server {
	stateJSON, _ := json.Marshal(options) //nolint:errcheck,errchkjson

	return Server{
		listenAddress: listenAddress,
		options:       options,
		state:         stateJSON,
		checks:        make(map[string]Check),
	}
}

// WithCheck /ready отвечает 503, пока хотя бы одна проверка возвращает ошибку.
func (s Server) WithCheck(name string, check Check) Server {
	checks := make(map[string]Check, len(s.checks)+1)
	for k, v := range s.checks {
		checks[k] = v
	}

	checks[name] = check
	s.checks = checks

	return s
}

func (s Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handlerHealthz)
	mux.HandleFunc("/ready", s.handlerReady)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              s.listenAddress,
		Handler:           mux,
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

	logger(ctx).Info("probe server started", slog.String("address", s.listenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer.ListenAndServe: %w", err)
	}

	logger(ctx).Info("probe server stopped")

	return nil
}

func (s Server) handlerHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write(s.state) //nolint:errcheck
}

func (s Server) handlerReady(w http.ResponseWriter, r *http.Request) {
	if len(s.checks) == 0 {
		w.WriteHeader(http.StatusOK)
		w.Write(s.state) //nolint:errcheck

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessCheckTimeout)
	defer cancel()

	state := readyState{Options: s.options}

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			if state.Failed == nil {
				state.Failed = make(map[string]string)
			}

			state.Failed[name] = err.Error()

			logger(ctx).Warn("readiness check failed", slog.String("check", name), logx.Error(err))
		}
	}

	status := http.StatusOK
	if len(state.Failed) > 0 {
		status = http.StatusServiceUnavailable
	}

	body, _ := json.Marshal(state) //nolint:errcheck,errchkjson

	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}
