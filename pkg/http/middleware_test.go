package xhttp

import (
	"testing"

	"github.com/prestamos/vales-gateway/pkg/prom"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestRequestLoggerMiddleware_ObservesRequestDuration(t *testing.T) {
	require.NoError(t, prom.Create("testhost", "test", "test"))

	hist := prom.MetricCollectionHistogramVec[prom.SystemVales+"_"+prom.MetricHTTPRequestDuration]
	require.NotNil(t, hist)

	before := testutil.CollectAndCount(hist)

	handler := RequestLoggerMiddleware(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(200)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI("/api/vales")
	handler(ctx)

	// a new labeled series (method=GET, status=200) exists after the request
	assert.Equal(t, before+1, testutil.CollectAndCount(hist))
}

func TestRequestLoggerMiddleware_SkipsHealthAndMetrics(t *testing.T) {
	require.NoError(t, prom.Create("testhost", "test", "test"))

	hist := prom.MetricCollectionHistogramVec[prom.SystemVales+"_"+prom.MetricHTTPRequestDuration]
	require.NotNil(t, hist)

	before := testutil.CollectAndCount(hist)

	handler := RequestLoggerMiddleware(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(200)
	})

	for _, path := range []string{"/api/health", "/metrics"} {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.SetMethod("GET")
		ctx.Request.SetRequestURI(path)
		handler(ctx)
	}

	assert.Equal(t, before, testutil.CollectAndCount(hist))
}
