package handler_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"khata/internal/handler"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{err: errors.New("unused")})

	c, w := newTestContext(http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness_OK(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{})

	c, w := newTestContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestHealthHandler_Readiness_DatabaseDownLogs(t *testing.T) {
	h := handler.NewHealthHandler(stubPinger{err: errors.New("dial tcp: connection refused")})

	var logs bytes.Buffer
	log := zerolog.New(&logs)
	c, w := newTestContext(http.MethodGet, "/readyz", nil)
	c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

	h.Readiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, logs.String(), "readiness check failed")
	assert.Contains(t, logs.String(), "connection refused")
}
