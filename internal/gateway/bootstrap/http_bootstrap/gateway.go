package http_bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/regclient/internal/gateway/bootstrap"
	"github.com/horockey/regclient/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ bootstrap.Gateway = &httpBootstrap{}

const resolvePath = "resolve"

type httpBootstrap struct {
	cl      *resty.Client
	metrics *metrics
	logger  zerolog.Logger
}

func New(timeout time.Duration, logger zerolog.Logger) *httpBootstrap {
	return &httpBootstrap{
		metrics: newMetrics(),
		logger:  logger,
		cl: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
	}
}

func (gw *httpBootstrap) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *httpBootstrap) Lookup(ctx context.Context, bootstrapAddr string) (res model.DiscoveryEndpoint, resErr error) {
	defer func(ts time.Time) {
		gw.metrics.requestsCnt.Inc()
		gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			gw.metrics.successProcessCnt.Inc()
		default:
			gw.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	url := ResolveURL(bootstrapAddr)
	gw.logger.Debug().Str("url", url).Msg("looking up discovery address")

	resp, err := gw.cl.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return model.DiscoveryEndpoint{}, model.TransportError{Op: "bootstrap lookup", Addr: url, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return model.DiscoveryEndpoint{}, fmt.Errorf("got non-ok response (%s): %s", resp.Status(), resp.String())
	}

	ep, err := ParseEndpoint(resp.String())
	if err != nil {
		return model.DiscoveryEndpoint{}, fmt.Errorf("parsing response: %w", err)
	}

	return ep, nil
}

// ResolveURL builds the lookup URL. Scheme defaults to http.
func ResolveURL(bootstrapAddr string) string {
	url := bootstrapAddr
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url + resolvePath
}

// ParseEndpoint reads "<host>:<port>" from the first line of body.
func ParseEndpoint(body string) (model.DiscoveryEndpoint, error) {
	sc := bufio.NewScanner(strings.NewReader(body))
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return model.DiscoveryEndpoint{}, fmt.Errorf("reading body: %w", err)
		}
		return model.DiscoveryEndpoint{}, errors.New("empty body")
	}

	host, portStr, err := net.SplitHostPort(strings.TrimSpace(sc.Text()))
	if err != nil {
		return model.DiscoveryEndpoint{}, fmt.Errorf("splitting host and port: %w", err)
	}
	if host == "" {
		return model.DiscoveryEndpoint{}, errors.New("got empty host")
	}

	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return model.DiscoveryEndpoint{}, fmt.Errorf("parsing port: %w", err)
	}
	if port <= 0 || port > 65535 {
		return model.DiscoveryEndpoint{}, fmt.Errorf("port must be in [1, 65535], got: %d", port)
	}

	return model.DiscoveryEndpoint{
		Host:  host,
		Port:  int32(port),
		Valid: true,
	}, nil
}
