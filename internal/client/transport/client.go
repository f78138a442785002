// Package transport talks to the MovieKeeper server: REST calls for the
// collection and accounts, and the websocket push channel.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// Client is the REST side of the transport. Failures are mapped onto the
// common sentinel errors so callers can branch with errors.Is.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger logging.Logger
}

// New builds a client for serverURL (e.g. "http://127.0.0.1:3000").
func New(serverURL string, l logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", serverURL)
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: l.With("module", "transport"),
	}, nil
}

type apiError struct {
	Message string `json:"message"`
}

// errorForStatus maps a non-2xx response to a sentinel error.
func errorForStatus(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = common.ErrValidation
	case http.StatusUnauthorized:
		sentinel = common.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrAuthorization
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusMethodNotAllowed, http.StatusConflict:
		sentinel = common.ErrConflict
	case http.StatusServiceUnavailable:
		sentinel = common.ErrStorageDisabled
	default:
		sentinel = common.ErrTransport
	}
	return fmt.Errorf("%w: %d %s", sentinel, status, msg)
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %v", common.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", common.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug(ctx, "request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return errorForStatus(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", common.ErrTransport, err)
		}
	}
	return nil
}

// List fetches the caller's collection.
func (c *Client) List(ctx context.Context, token string) ([]models.Movie, error) {
	var out []models.Movie
	if err := c.do(ctx, http.MethodGet, "/api/items", token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Movie{}
	}
	return out, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, token, id string) (models.Movie, error) {
	var out models.Movie
	err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), token, nil, &out)
	return out, err
}

// Create stores m under a server-assigned ID.
func (c *Client) Create(ctx context.Context, token string, m models.Movie) (models.Movie, error) {
	m.ID = ""
	var out models.Movie
	err := c.do(ctx, http.MethodPost, "/api/items", token, m, &out)
	return out, err
}

// Update replaces the persisted record m.ID.
func (c *Client) Update(ctx context.Context, token string, m models.Movie) (models.Movie, error) {
	if !m.Persisted() {
		return models.Movie{}, fmt.Errorf("%w: update needs an id", common.ErrValidation)
	}
	var out models.Movie
	err := c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(m.ID), token, m, &out)
	return out, err
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), token, nil, nil)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignUp registers an account and returns its token.
func (c *Client) SignUp(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", credentials{username, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{username, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

type uploadURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PhotoUploadURL asks the server for a storage key and a presigned PUT URL.
func (c *Client) PhotoUploadURL(ctx context.Context, token string) (key, putURL string, err error) {
	var out uploadURL
	if err := c.do(ctx, http.MethodGet, "/api/photos/upload-url", token, nil, &out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

// UploadPhoto PUTs data to a presigned URL.
func (c *Client) UploadPhoto(ctx context.Context, putURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, putURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: upload failed: %s; body: %s", common.ErrTransport, resp.Status, string(b))
	}
	return nil
}
