package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/emberwell/migrate/internal/entity"
)

// RemoteClient speaks the target store's HTTP API.
//
// Wire contract per entity type:
//
//	GET    {base}/{type}?cursor=...&field=value  -> {"items": [...], "nextCursor": "..."}
//	POST   {base}/{type}                         -> {"data": {...}, "errors": [...]}
//	PATCH  {base}/{type}/{id}                    -> {"data": {...}, "errors": [...]}
//	DELETE {base}/{type}/{id}                    -> {"errors": [...]}
//
// Transport failures and 5xx responses are retried with exponential
// backoff; 4xx responses and errors reported in the envelope are
// permanent. The client assumes nothing stronger than read-your-writes
// consistency within a single run.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	maxElapsed time.Duration
}

// NewRemoteClient creates a client for the store at baseURL.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		maxElapsed: 30 * time.Second,
	}
}

// SetHTTPClient overrides the transport. Intended for tests.
func (c *RemoteClient) SetHTTPClient(h *http.Client) { c.httpClient = h }

// SetMaxElapsed bounds total retry time per request. Intended for tests.
func (c *RemoteClient) SetMaxElapsed(d time.Duration) { c.maxElapsed = d }

// Close implements Client. The remote client holds no resources.
func (c *RemoteClient) Close() error { return nil }

// envelope is the store's response shape for all operations.
type envelope struct {
	Items      []Object      `json:"items"`
	NextCursor string        `json:"nextCursor"`
	Data       Object        `json:"data"`
	Errors     []remoteError `json:"errors"`
}

type remoteError struct {
	Message string `json:"message"`
}

func (e envelope) firstError() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Message
}

// List fetches one page.
func (c *RemoteClient) List(ctx context.Context, typ entity.Type, filter Filter, cursor string) (Page, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	for k, v := range filter {
		q.Set(k, v)
	}
	path := string(typ)
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Page{}, err
	}
	if msg := env.firstError(); msg != "" {
		return Page{}, fmt.Errorf("list %s: store error: %s", typ, msg)
	}
	return Page{Items: env.Items, NextCursor: env.NextCursor}, nil
}

// Create posts a new record. Per-record failures come back as *WriteError.
func (c *RemoteClient) Create(ctx context.Context, typ entity.Type, obj Object) error {
	env, err := c.do(ctx, http.MethodPost, string(typ), obj)
	if err != nil {
		return &WriteError{Op: "create", EntityType: typ, ID: obj.ID(), Message: "request failed", Err: err}
	}
	if msg := env.firstError(); msg != "" {
		return &WriteError{Op: "create", EntityType: typ, ID: obj.ID(), Message: msg}
	}
	return nil
}

// Update patches the named record. Only the fields in the patch are sent;
// the store merges them into the existing record.
func (c *RemoteClient) Update(ctx context.Context, typ entity.Type, id string, patch Object) error {
	env, err := c.do(ctx, http.MethodPatch, string(typ)+"/"+url.PathEscape(id), patch)
	if err != nil {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: "request failed", Err: err}
	}
	if msg := env.firstError(); msg != "" {
		return &WriteError{Op: "update", EntityType: typ, ID: id, Message: msg}
	}
	return nil
}

// Delete removes the named record.
func (c *RemoteClient) Delete(ctx context.Context, typ entity.Type, id string) error {
	env, err := c.do(ctx, http.MethodDelete, string(typ)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return &WriteError{Op: "delete", EntityType: typ, ID: id, Message: "request failed", Err: err}
	}
	if msg := env.firstError(); msg != "" {
		return &WriteError{Op: "delete", EntityType: typ, ID: id, Message: msg}
	}
	return nil
}

// do performs one request with retry and decodes the response envelope.
func (c *RemoteClient) do(ctx context.Context, method, path string, body any) (envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("marshal request: %w", err)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed

	var env envelope
	op := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
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

		env = envelope{}
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return envelope{}, err
	}
	return env, nil
}
