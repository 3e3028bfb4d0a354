package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
)

// Source yields the raw text of a named legacy export document. The
// retrieval mechanism (directory, URL) is chosen once at process start.
type Source interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// FetchError indicates the raw source for a document could not be
// retrieved. This is fatal for the entity type that needed the document.
type FetchError struct {
	Name string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch source %q: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DirSource reads documents from files in a directory.
type DirSource struct {
	Dir string
}

// Fetch reads the named file from the source directory.
func (s DirSource) Fetch(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", &FetchError{Name: name, Err: err}
	}
	return string(data), nil
}

// HTTPSource reads documents from a base URL, retrying transient failures
// with exponential backoff. Client errors (4xx) are not retried: a
// missing document will not appear by waiting.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client

	// MaxElapsed bounds total retry time. Zero means 30 seconds.
	MaxElapsed time.Duration
}

// Fetch GETs BaseURL/name and returns the body.
func (s HTTPSource) Fetch(ctx context.Context, name string) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	target, err := url.JoinPath(s.BaseURL, name)
	if err != nil {
		return "", &FetchError{Name: name, Err: err}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.MaxElapsed
	if bo.MaxElapsedTime == 0 {
		bo.MaxElapsedTime = 30 * time.Second
	}

	var body string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("server returned %s", resp.Status)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("server returned %s", resp.Status))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(data)
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", &FetchError{Name: name, Err: err}
	}
	return body, nil
}
