package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("user_id\n1\n"), 0o644))

	src := DirSource{Dir: dir}
	raw, err := src.Fetch(context.Background(), "users.csv")
	require.NoError(t, err)
	assert.Equal(t, "user_id\n1\n", raw)
}

func TestDirSource_FetchMissing(t *testing.T) {
	src := DirSource{Dir: t.TempDir()}
	_, err := src.Fetch(context.Background(), "nope.csv")
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "want *FetchError, got %v", err)
	assert.Equal(t, "nope.csv", fe.Name)
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exports/users.csv", r.URL.Path)
		_, _ = w.Write([]byte("user_id\n1\n"))
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL + "/exports"}
	raw, err := src.Fetch(context.Background(), "users.csv")
	require.NoError(t, err)
	assert.Equal(t, "user_id\n1\n", raw)
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL, MaxElapsed: 5 * time.Second}
	raw, err := src.Fetch(context.Background(), "doc.csv")
	require.NoError(t, err)
	assert.Equal(t, "ok", raw)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestHTTPSource_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL, MaxElapsed: 5 * time.Second}
	_, err := src.Fetch(context.Background(), "doc.csv")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}
