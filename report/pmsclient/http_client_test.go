package pmsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelangilabs/moltbot/pkg/config"
)

func TestClient_GetOccupancy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/occupancy", r.URL.Path)
		assert.Equal(t, "Bearer pms-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 22, "occupied": 15, "available": 7, "occupancyRate": 68.2}`))
	}))
	defer server.Close()

	client := NewClient(config.PMSConfig{BaseURL: server.URL, APIToken: "pms-token", Timeout: 5 * time.Second})

	stats, err := client.GetOccupancy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 22, stats.Total)
	assert.Equal(t, 15, stats.Occupied)
	assert.InDelta(t, 68.2, stats.OccupancyRate, 0.01)
}

func TestClient_CountCheckedInGuests_UsesPaginatedTotal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/guests/checked-in", r.URL.Path)
		w.Write([]byte(`{"data": [{"name": "Aiman"}], "total": 15}`))
	}))
	defer server.Close()

	client := NewClient(config.PMSConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	count, err := client.CountCheckedInGuests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestClient_BadStatusReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.PMSConfig{BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := client.ListOverdueGuests(context.Background())
	assert.Error(t, err)
}
