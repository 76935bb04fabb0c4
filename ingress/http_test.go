package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsirotkin256/matchcore/engine"
)

func newTestServer(t *testing.T) (*Server, *engine.Dispatcher) {
	t.Helper()
	logger := logrus.New()
	d := engine.NewDispatcher([]string{"BTCUSD"}, 1, logger, engine.Hooks{})
	d.Start()
	t.Cleanup(d.Shutdown)
	return NewServer(d, 2, 20, "", "*", logger), d
}

func TestHandleSubmitAccepted(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/buy/BTCUSD/100.00/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSubmitUnknownMarket(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/buy/ETHUSD/100.00/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitMalformedPrice(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/buy/BTCUSD/not-a-price/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitUnknownSide(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/sideways/BTCUSD/100.00/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSnapshotAfterSubmit(t *testing.T) {
	srv, _ := newTestServer(t)

	submit := httptest.NewRequest(http.MethodPost, "/buy/BTCUSD/100.00/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, submit)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := httptest.NewRequest(http.MethodGet, "/orderbook/btcusd/10", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, snap)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BUY")
}

func TestHandleCancelRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	submit := httptest.NewRequest(http.MethodPost, "/buy/BTCUSD/100.00/5", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, submit)
	require.Equal(t, http.StatusOK, rec.Code)

	cancel := httptest.NewRequest(http.MethodPost, "/cancel/BTCUSD/buy/100.00/ord-1", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, cancel)

	assert.Equal(t, http.StatusOK, rec.Code)
}
