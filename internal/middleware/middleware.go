package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Chain struct {
	limiter *IPRateLimiter
	logger  *logger_i.Logger
}

func New(cfg config.ServerConfig) *Chain {
	limit := cfg.RateLimitPerSecond
	if limit <= 0 {
		limit = config.RATE_LIMIT_PER_SECOND
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = config.BURST_RATE_LIMIT_PER_SECOND
	}
	return &Chain{
		limiter: NewIPRateLimiter(rate.Limit(limit), burst),
		logger:  logger_i.NewLogger("middleware"),
	}
}

// Wrap injects the trace id, applies the per-IP rate limit and records the
// response status per route pattern.
func (c *Chain) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next.ServeHTTP(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routeLabel(re.req), strconv.Itoa(rec.Status)).Inc() //metrics
	})
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = c.logger
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	return c.rateLimiter(re)
}

// routeLabel keeps metric cardinality bounded by using the chi pattern
// instead of the raw path.
func routeLabel(r *http.Request) string {
	if r == nil {
		return "unknown"
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
