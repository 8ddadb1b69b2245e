package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/health/service"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoints(t *testing.T) {
	state := service.NewState()
	mux := NewMux(state)

	assert.Equal(t, http.StatusOK, get(t, mux, "/livez").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, mux, "/readyz").Code)

	state.SetReady(true)
	assert.Equal(t, http.StatusOK, get(t, mux, "/readyz").Code)

	at := time.Unix(1_700_000_000, 0)
	state.SnapshotDone(at, models.PassStats{Pages: 2, Records: 150, Assets: 3})

	w := get(t, mux, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Ready            bool             `json:"ready"`
		Snapshots        int64            `json:"snapshots"`
		LastSnapshotUnix int64            `json:"lastSnapshotUnix"`
		LastStats        models.PassStats `json:"lastStats"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ready)
	assert.EqualValues(t, 1, body.Snapshots)
	assert.Equal(t, at.Unix(), body.LastSnapshotUnix)
	assert.Equal(t, 150, body.LastStats.Records)
}
