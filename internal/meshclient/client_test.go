package meshclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-mesh/internal/meshclient"
)

type product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clientFor(t *testing.T, peer string, chain ...meshclient.Transport) *meshclient.Client {
	t.Helper()
	return meshclient.New(meshclient.StaticResolver{peer: chain}, discardLogger())
}

// countingTransport wraps another transport and counts attempts.
type countingTransport struct {
	inner meshclient.Transport
	calls int
}

func (c *countingTransport) Name() string { return c.inner.Name() }

func (c *countingTransport) Call(ctx context.Context, method, path string, body []byte) (*meshclient.Response, error) {
	c.calls++
	return c.inner.Call(ctx, method, path, body)
}

func TestInvokeThroughSidecar(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(product{ID: "p1", Name: "widget", Stock: 50})
	}))
	defer srv.Close()

	sidecar := meshclient.NewSidecarTransport(strings.TrimPrefix(srv.URL, "http://"), "product-service")
	c := clientFor(t, "product-service", sidecar)

	p, err := meshclient.Invoke[product](context.Background(), c, "product-service", "products/p1")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if p.ID != "p1" || p.Stock != 50 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if want := "/v1.0/invoke/product-service/method/products/p1"; gotPath != want {
		t.Fatalf("sidecar path = %q, want %q", gotPath, want)
	}
}

func TestFallbackTransparency(t *testing.T) {
	// Sidecar route points at a dead address; the direct route answers.
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/p1" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(product{ID: "p1", Name: "widget", Stock: 7})
	}))
	defer direct.Close()

	dead := meshclient.NewSidecarTransport("127.0.0.1:1", "product-service")
	fallback := meshclient.NewDirectTransport(direct.URL, time.Second)
	c := clientFor(t, "product-service", dead, fallback)

	p, err := meshclient.Invoke[product](context.Background(), c, "product-service", "products/p1")
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if p.Stock != 7 {
		t.Fatalf("caller must receive the direct path's response, got %+v", p)
	}
}

func TestNotFoundIsTerminal(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(product{ID: "ghost"})
	}))
	defer second.Close()

	fallback := &countingTransport{inner: meshclient.NewDirectTransport(second.URL, time.Second)}
	c := clientFor(t, "peer", meshclient.NewDirectTransport(first.URL, time.Second), fallback)

	_, err := meshclient.Invoke[product](context.Background(), c, "peer", "products/nope")
	if meshclient.KindOf(err) != meshclient.KindNotFound {
		t.Fatalf("kind = %v, want not_found (err=%v)", meshclient.KindOf(err), err)
	}
	if fallback.calls != 0 {
		t.Fatalf("a peer 404 is authoritative, second transport was tried %d times", fallback.calls)
	}
}

func TestAllTransportsDown(t *testing.T) {
	c := clientFor(t, "peer",
		meshclient.NewDirectTransport("http://127.0.0.1:1", 200*time.Millisecond),
		meshclient.NewDirectTransport("http://127.0.0.1:2", 200*time.Millisecond),
	)
	_, err := meshclient.Invoke[product](context.Background(), c, "peer", "products/p1")
	if meshclient.KindOf(err) != meshclient.KindTransportUnavailable {
		t.Fatalf("kind = %v, want transport_unavailable", meshclient.KindOf(err))
	}
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := clientFor(t, "peer", meshclient.NewDirectTransport(srv.URL, time.Second))
	_, err := meshclient.Invoke[product](context.Background(), c, "peer", "products/p1")
	if meshclient.KindOf(err) != meshclient.KindMalformedResponse {
		t.Fatalf("kind = %v, want malformed_response", meshclient.KindOf(err))
	}
}

func TestPeerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := clientFor(t, "peer", meshclient.NewDirectTransport(srv.URL, time.Second))
	_, err := meshclient.Invoke[product](context.Background(), c, "peer", "products/p1")
	if meshclient.KindOf(err) != meshclient.KindPeerRejected {
		t.Fatalf("kind = %v, want peer_rejected", meshclient.KindOf(err))
	}
	ce := err.(*meshclient.CallError)
	if ce.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", ce.Status)
	}
}

func TestSidecarErrorFallsBackToDirect(t *testing.T) {
	// The sidecar answers 500 (e.g. it cannot reach the app); the direct
	// route still succeeds, so the caller sees success.
	sidecarSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sidecar error", http.StatusInternalServerError)
	}))
	defer sidecarSrv.Close()
	directSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(product{ID: "p1", Stock: 3})
	}))
	defer directSrv.Close()

	c := clientFor(t, "product-service",
		meshclient.NewSidecarTransport(strings.TrimPrefix(sidecarSrv.URL, "http://"), "product-service"),
		meshclient.NewDirectTransport(directSrv.URL, time.Second),
	)

	p, err := meshclient.Invoke[product](context.Background(), c, "product-service", "products/p1")
	if err != nil {
		t.Fatalf("expected success via direct route, got %v", err)
	}
	if p.Stock != 3 {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestSendCarriesPayload(t *testing.T) {
	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := clientFor(t, "peer", meshclient.NewDirectTransport(srv.URL, time.Second))
	err := c.Send(context.Background(), "peer", http.MethodPut, "products/p1/stock", map[string]int{"stock": 48})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %s, want PUT", gotMethod)
	}
	if gotBody != `{"stock":48}` {
		t.Fatalf("body = %s", gotBody)
	}
}

func TestUnknownPeer(t *testing.T) {
	c := meshclient.New(meshclient.StaticResolver{}, discardLogger())
	_, err := meshclient.Invoke[product](context.Background(), c, "nobody", "x")
	if meshclient.KindOf(err) != meshclient.KindTransportUnavailable {
		t.Fatalf("kind = %v, want transport_unavailable", meshclient.KindOf(err))
	}
}
