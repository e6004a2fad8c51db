package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinboard/internal/domain"
	"github.com/vadiminshakov/coinboard/pkg/retrier"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultRetryMultiplier = 1.5
	defaultRetryJitter     = 0.2
)

// BackendClient implements the dashboard backend calls against a remote coinboard API.
// Reads are retried on transport errors and 5xx answers; mutations are sent once.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// ClientOption configures a BackendClient.
type ClientOption func(*BackendClient)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(b *BackendClient) {
		b.httpClient = c
	}
}

// WithRetrier replaces the read retry policy.
func WithRetrier(r *retrier.Retrier) ClientOption {
	return func(b *BackendClient) {
		b.retrier = r
	}
}

// NewBackendClient creates a client for the API served at baseURL.
func NewBackendClient(baseURL string, opts ...ClientOption) *BackendClient {
	c := &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		retrier:    retrier.New(
			retrier.WithMultiplier(defaultRetryMultiplier),
			retrier.WithJitter(defaultRetryJitter),
			retrier.WithRetryIf(isTransient),
		),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RemoteError error answered by the API. It unwraps to the domain sentinel of its code.
type RemoteError struct {
	Status  int
	Code    domain.ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	if e.Code == domain.KindBusy && strings.Contains(e.Message, domain.ErrBusyRefreshing.Error()) {
		return domain.ErrBusyRefreshing
	}
	return e.Code.Sentinel()
}

// isTransient reports whether a read may succeed on retry: 5xx answers and transport failures.
// Undecodable 2xx bodies and cancelled contexts are final.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status >= http.StatusInternalServerError
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *BackendClient) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return read[[]domain.Asset](ctx, c, "/api/assets")
}

func (c *BackendClient) FindAssetsByQuery(ctx context.Context, text string) ([]string, error) {
	return read[[]string](ctx, c, "/api/assets/search?"+url.Values{"q": {text}}.Encode())
}

func (c *BackendClient) ListWatchlists(ctx context.Context) ([]domain.Watchlist, error) {
	return read[[]domain.Watchlist](ctx, c, "/api/watchlists")
}

func (c *BackendClient) CreateWatchlist(ctx context.Context, name string) (domain.Watchlist, error) {
	var out domain.Watchlist
	err := c.send(ctx, http.MethodPost, "/api/watchlists", map[string]string{"name": name}, &out)
	return out, err
}

func (c *BackendClient) RenameWatchlist(ctx context.Context, id, name string) (domain.Watchlist, error) {
	var out domain.Watchlist
	err := c.send(ctx, http.MethodPatch, "/api/watchlists/"+url.PathEscape(id), map[string]string{"name": name}, &out)
	return out, err
}

func (c *BackendClient) DeleteWatchlist(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/api/watchlists/"+url.PathEscape(id), nil, nil)
}

func (c *BackendClient) UpdateWatchlistCoinIDs(ctx context.Context, id string, ids []string, mode domain.CoinIDsMode) (domain.Watchlist, error) {
	var out domain.Watchlist
	body := struct {
		IDs  []string           `json:"ids"`
		Mode domain.CoinIDsMode `json:"mode"`
	}{IDs: ids, Mode: mode}

	err := c.send(ctx, http.MethodPut, "/api/watchlists/"+url.PathEscape(id)+"/coins", body, &out)
	return out, err
}

func (c *BackendClient) SetWatchlistNote(ctx context.Context, id, coinID, text string) (domain.Watchlist, error) {
	var out domain.Watchlist
	path := fmt.Sprintf("/api/watchlists/%s/notes/%s", url.PathEscape(id), url.PathEscape(coinID))
	err := c.send(ctx, http.MethodPut, path, map[string]string{"text": text}, &out)
	return out, err
}

func (c *BackendClient) ListRefreshConfigs(ctx context.Context) ([]domain.RefreshConfig, error) {
	return read[[]domain.RefreshConfig](ctx, c, "/api/refresh-configs")
}

func (c *BackendClient) UpdateRefreshConfig(ctx context.Context, id domain.StreamID, patch domain.RefreshConfigPatch) ([]domain.RefreshConfig, error) {
	var out []domain.RefreshConfig
	err := c.send(ctx, http.MethodPatch, "/api/refresh-configs/"+url.PathEscape(id.String()), patch, &out)
	return out, err
}

func read[T any](ctx context.Context, c *BackendClient, path string) (T, error) {
	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (T, error) {
		var out T
		err := c.send(ctx, http.MethodGet, path, nil, &out)
		return out, err
	})
}

func (c *BackendClient) send(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}

	return nil
}

func decodeError(status int, raw []byte) error {
	var body struct {
		Error string           `json:"error"`
		Code  domain.ErrorKind `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		return &RemoteError{
			Status:  status,
			Code:    domain.KindServiceFailure,
			Message: fmt.Sprintf("API returned status %d: %s", status, strings.TrimSpace(string(raw))),
		}
	}

	return &RemoteError{Status: status, Code: body.Code, Message: body.Error}
}
