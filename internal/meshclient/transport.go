package meshclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Response is the raw outcome of a transport attempt that reached the peer.
type Response struct {
	Status int
	Body   []byte
}

// Transport carries one request to a peer over one route. A returned error
// means the peer was not reached (dial, timeout, broken body); an HTTP error
// status is a Response, not an error — the caller classifies it.
type Transport interface {
	Name() string
	Call(ctx context.Context, method, path string, body []byte) (*Response, error)
}

// SidecarTransport invokes a peer through the co-located mesh sidecar, which
// resolves the logical app id to an address. No client-side timeout is layered
// on top: the sidecar enforces its own.
type SidecarTransport struct {
	SidecarAddr string // host:port
	AppID       string
	HTTP        *http.Client
}

func NewSidecarTransport(sidecarAddr, appID string) *SidecarTransport {
	return &SidecarTransport{
		SidecarAddr: sidecarAddr,
		AppID:       appID,
		HTTP:        &http.Client{},
	}
}

func (t *SidecarTransport) Name() string { return "sidecar" }

func (t *SidecarTransport) Call(ctx context.Context, method, path string, body []byte) (*Response, error) {
	url := fmt.Sprintf("http://%s/v1.0/invoke/%s/method/%s", t.SidecarAddr, t.AppID, strings.TrimPrefix(path, "/"))
	return doRequest(ctx, t.HTTP, method, url, body)
}

// DirectTransport bypasses the mesh and calls the peer at its
// externally-resolvable base URL. It carries its own bounded timeout so a
// hung direct call cannot block the caller indefinitely.
type DirectTransport struct {
	BaseURL string
	HTTP    *http.Client
}

func NewDirectTransport(baseURL string, timeout time.Duration) *DirectTransport {
	return &DirectTransport{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (t *DirectTransport) Name() string { return "direct" }

func (t *DirectTransport) Call(ctx context.Context, method, path string, body []byte) (*Response, error) {
	url := t.BaseURL + "/" + strings.TrimPrefix(path, "/")
	return doRequest(ctx, t.HTTP, method, url, body)
}

func doRequest(ctx context.Context, hc *http.Client, method, url string, body []byte) (*Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: b}, nil
}
