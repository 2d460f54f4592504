package meshclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Client calls peers through an ordered chain of transports. The usual chain
// is sidecar first, direct second; the chain itself lives in the Resolver so
// tests and deployments can reorder it.
type Client struct {
	resolver Resolver
	log      *slog.Logger
}

func New(resolver Resolver, log *slog.Logger) *Client {
	return &Client{resolver: resolver, log: log}
}

// raw walks the transport chain. Fallback rules:
//   - transport-level error (dial, timeout): warn and try the next transport
//   - 404: terminal not-found, the peer answered authoritatively
//   - other non-2xx: warn and try the next transport; if every transport
//     ends this way the call fails as peer_rejected with the last status
//   - 2xx: done
func (c *Client) raw(ctx context.Context, peer, method, path string, body []byte) ([]byte, *CallError) {
	chain := c.resolver.Resolve(peer)
	if len(chain) == 0 {
		return nil, &CallError{Kind: KindTransportUnavailable, Peer: peer, Path: path}
	}

	lastStatus := 0
	var lastErr error
	for _, t := range chain {
		resp, err := t.Call(ctx, method, path, body)
		if err != nil {
			lastErr = err
			c.log.Warn("transport attempt failed",
				"peer", peer, "path", path, "transport", t.Name(), "error", err)
			continue
		}
		switch {
		case resp.Status == http.StatusNotFound:
			return nil, &CallError{Kind: KindNotFound, Peer: peer, Path: path, Status: resp.Status}
		case resp.Status >= 200 && resp.Status < 300:
			c.log.Info("remote call succeeded",
				"peer", peer, "path", path, "transport", t.Name(), "status", resp.Status)
			return resp.Body, nil
		default:
			lastStatus = resp.Status
			lastErr = nil
			c.log.Warn("peer returned error status",
				"peer", peer, "path", path, "transport", t.Name(), "status", resp.Status)
		}
	}

	kind := KindTransportUnavailable
	if lastStatus != 0 {
		kind = KindPeerRejected
	}
	c.log.Error("all transports exhausted",
		"peer", peer, "path", path, "kind", kind.String(), "status", lastStatus, "error", lastErr)
	return nil, &CallError{Kind: kind, Peer: peer, Path: path, Status: lastStatus, Err: lastErr}
}

// Invoke issues a GET to the peer and decodes the JSON response into T.
func Invoke[T any](ctx context.Context, c *Client, peer, path string) (T, error) {
	return InvokeWith[T](ctx, c, peer, http.MethodGet, path, nil)
}

// InvokeWith issues a request with a JSON payload and decodes the response
// into T. A 2xx body that does not decode is a malformed_response failure,
// never a zero T.
func InvokeWith[T any](ctx context.Context, c *Client, peer, method, path string, payload any) (T, error) {
	var zero T

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return zero, &CallError{Kind: KindMalformedResponse, Peer: peer, Path: path, Err: err}
		}
		body = b
	}

	respBody, cerr := c.raw(ctx, peer, method, path, body)
	if cerr != nil {
		return zero, cerr
	}

	var out T
	if err := json.Unmarshal(respBody, &out); err != nil {
		c.log.Error("response body did not decode", "peer", peer, "path", path, "error", err)
		return zero, &CallError{Kind: KindMalformedResponse, Peer: peer, Path: path, Err: err}
	}
	return out, nil
}

// Send issues a request and discards any response body. Used for writes whose
// success is carried by the status code alone.
func (c *Client) Send(ctx context.Context, peer, method, path string, payload any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &CallError{Kind: KindMalformedResponse, Peer: peer, Path: path, Err: err}
		}
		body = b
	}
	if _, cerr := c.raw(ctx, peer, method, path, body); cerr != nil {
		return cerr
	}
	return nil
}
