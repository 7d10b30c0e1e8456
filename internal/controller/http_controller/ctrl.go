package http_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/horockey/go-toolbox/http_helpers"
	"github.com/horockey/regclient/internal/controller/http_controller/dto"
	"github.com/horockey/regclient/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HttpController serves read-only introspection of a registered client.
type HttpController struct {
	serv     *http.Server
	entry    model.EntryFunc
	resolver model.Resolver
	logger   zerolog.Logger
	metrics  *metrics
}

func New(
	addr string,
	entry model.EntryFunc,
	resolver model.Resolver,
	logger zerolog.Logger,
) *HttpController {
	return &HttpController{
		serv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second, //nolint: mnd
		},
		entry:    entry,
		resolver: resolver,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

func (ctrl *HttpController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

// Handler builds the router. Metrics are exposed from gatherer.
func (ctrl *HttpController) Handler(gatherer prometheus.Gatherer) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	router.HandleFunc("/entry", ctrl.getEntryHandler).Methods(http.MethodGet)
	router.HandleFunc("/resolve/{name}", ctrl.getResolveHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Use(ctrl.metricsMW)

	return router
}

func (ctrl *HttpController) Start(ctx context.Context, gatherer prometheus.Gatherer) (resErr error) {
	ctrl.serv.Handler = ctrl.Handler(gatherer)

	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := ctrl.serv.Shutdown(sdCtx); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("shutting down server: %w", err))
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

func (ctrl *HttpController) metricsMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := "unknown"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		start := time.Now()
		ctrl.metrics.requestsCnt.WithLabelValues(route).Inc()
		next.ServeHTTP(w, req)
		ctrl.metrics.handleTimeHist.WithLabelValues(route).Observe(float64(time.Since(start)))
	})
}

func (ctrl *HttpController) getEntryHandler(w http.ResponseWriter, _ *http.Request) {
	entry, ok := ctrl.entry()
	if !ok {
		ctrl.metrics.errRespCnt.Inc()
		_ = http_helpers.RespondWithErr(w, http.StatusNotFound, model.ErrNotRegistered)
		return
	}

	ctrl.metrics.okRespCnt.Inc()
	_ = http_helpers.RespondOK(w, dto.NewEntry(entry))
}

func (ctrl *HttpController) getResolveHandler(w http.ResponseWriter, req *http.Request) {
	name, found := mux.Vars(req)["name"]
	if !found || name == "" {
		err := errors.New("missing name")
		ctrl.logger.Error().Err(err).Send()
		ctrl.metrics.errRespCnt.Inc()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}

	entry, found, err := ctrl.resolver.Resolve(req.Context(), name)
	if err != nil {
		ctrl.logger.
			Error().
			Err(fmt.Errorf("resolving %s: %w", name, err)).
			Send()
		ctrl.metrics.errRespCnt.Inc()
		_ = http_helpers.RespondWithErr(w, http.StatusBadGateway, err)
		return
	}
	if !found {
		ctrl.metrics.errRespCnt.Inc()
		_ = http_helpers.RespondWithErr(w, http.StatusNotFound, model.ServiceNotFoundError{Name: name})
		return
	}

	ctrl.metrics.okRespCnt.Inc()
	_ = http_helpers.RespondOK(w, dto.NewEntry(entry))
}
