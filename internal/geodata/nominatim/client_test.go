package nominatim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-system/internal/geodata"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "tourism-system-test/1.0", 2*time.Second)
}

func nominatimBody(results ...map[string]interface{}) []byte {
	b, _ := json.Marshal(results)
	return b
}

func bangaloreResult() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Bangalore",
		"display_name": "Bangalore, Karnataka, India",
		"type":         "city",
		"lat":          "12.9716",
		"lon":          "77.5946",
		"address":      map[string]string{"country": "India"},
	}
}

func TestResolve_ExactMatchHighConfidence(t *testing.T) {
	var calls int64
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write(nominatimBody(bangaloreResult()))
	})

	candidates, err := client.Resolve(context.Background(), "Bangalore")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, geodata.ConfidenceHigh, candidates[0].Confidence)
	assert.Equal(t, 12.9716, candidates[0].Latitude)
	assert.Equal(t, 77.5946, candidates[0].Longitude)
	assert.Equal(t, "India", candidates[0].Country)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestResolve_EmptyInputNoNetworkCall(t *testing.T) {
	var calls int64
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write(nominatimBody())
	})

	_, err := client.Resolve(context.Background(), "   ")

	assert.ErrorIs(t, err, geodata.ErrInvalidInput)
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestResolve_RelaxedRetryRecoversMatch(t *testing.T) {
	var calls int64
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			// Qualified query finds nothing.
			w.Write(nominatimBody())
			return
		}
		// Relaxed query should have the qualifier dropped.
		assert.Equal(t, "Bangalore", r.URL.Query().Get("q"))
		w.Write(nominatimBody(bangaloreResult()))
	})

	candidates, err := client.Resolve(context.Background(), "Bangalore, Mars Sector")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Bangalore", candidates[0].Name)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls), "exactly two geocoding calls expected")
}

func TestResolve_DiacriticsFoldedOnRetry(t *testing.T) {
	var calls int64
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			w.Write(nominatimBody())
			return
		}
		assert.Equal(t, "Malaga", r.URL.Query().Get("q"))
		w.Write(nominatimBody(map[string]interface{}{
			"name":         "Málaga",
			"display_name": "Málaga, Andalusia, Spain",
			"type":         "city",
			"lat":          "36.7213",
			"lon":          "-4.4216",
		}))
	})

	candidates, err := client.Resolve(context.Background(), "Málaga")

	require.NoError(t, err)
	// Folded comparison still recognizes the match as exact.
	assert.Equal(t, geodata.ConfidenceHigh, candidates[0].Confidence)
}

func TestResolve_NotFoundAfterRetry(t *testing.T) {
	var calls int64
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write(nominatimBody())
	})

	_, err := client.Resolve(context.Background(), "Xyzzqplace123")

	assert.ErrorIs(t, err, geodata.ErrNotFound)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestResolve_ServerErrorIsUnavailableNotEmpty(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Resolve(context.Background(), "Bangalore")

	assert.ErrorIs(t, err, geodata.ErrUnavailable)
	assert.NotErrorIs(t, err, geodata.ErrNotFound)
}

func TestResolve_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.URL, "tourism-system-test/1.0", 2*time.Second)
	srv.Close()

	_, err := client.Resolve(context.Background(), "Bangalore")

	assert.ErrorIs(t, err, geodata.ErrUnavailable)
}

func TestResolve_MalformedBodyIsUnavailable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Resolve(context.Background(), "Bangalore")

	assert.ErrorIs(t, err, geodata.ErrUnavailable)
}

func TestResolve_FuzzyMatchLowConfidence(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(nominatimBody(map[string]interface{}{
			"name":         "Valhalla",
			"display_name": "Valhalla, New York, United States",
			"type":         "city",
			"lat":          "41.0748",
			"lon":          "-73.7754",
		}))
	})

	candidates, err := client.Resolve(context.Background(), "Valhalla Norse Realm")

	require.NoError(t, err)
	assert.Equal(t, geodata.ConfidenceLow, candidates[0].Confidence)
}

func TestResolve_AlternateTypeLowConfidence(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(nominatimBody(map[string]interface{}{
			"name":         "Springfield",
			"display_name": "Springfield, Some County",
			"type":         "hamlet",
			"lat":          "40.0",
			"lon":          "-80.0",
		}))
	})

	candidates, err := client.Resolve(context.Background(), "Springfield")

	require.NoError(t, err)
	assert.Equal(t, geodata.ConfidenceLow, candidates[0].Confidence)
}
