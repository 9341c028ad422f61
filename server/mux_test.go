package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirrorcast/mirrorcast/server"
	"github.com/mirrorcast/mirrorcast/server/identifiers"
	"github.com/mirrorcast/mirrorcast/server/test"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func newTestMux() *server.Mux {
	log := test.NewLogger()

	rooms := server.NewRoomManager(log, func(room identifiers.RoomID) server.Adapter {
		return server.NewMemoryAdapter(log, room)
	})

	relay := server.NewRelay(log, server.NewWSS(log), rooms)

	return server.NewMux(log, relay, server.PrometheusConfig{
		AccessToken: "at",
	})
}

func TestMux_Probes(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux := newTestMux()

	for _, path := range []string{"/probes/liveness", "/probes/health"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", path, nil)

		mux.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, "path: %s", path)
	}
}

func TestMux_MetricsRequireAccessToken(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux := newTestMux()

	tests := []struct {
		authHeader string
		query      string
		wantCode   int
	}{
		{"", "", http.StatusUnauthorized},
		{"Bearer wrong", "", http.StatusUnauthorized},
		{"Bearer at", "", http.StatusOK},
		{"", "?access_token=at", http.StatusOK},
		{"", "?access_token=wrong", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/metrics"+tc.query, nil)

		if tc.authHeader != "" {
			r.Header.Set("Authorization", tc.authHeader)
		}

		mux.ServeHTTP(w, r)
		assert.Equal(t, tc.wantCode, w.Code, "auth: %q query: %q", tc.authHeader, tc.query)
	}
}

func TestMux_NotFound(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux := newTestMux()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/nope", nil)

	mux.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
