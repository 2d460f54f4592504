package meshclient

import "fmt"

type Kind int

const (
	// KindNotFound: the peer answered and said the entity does not exist.
	KindNotFound Kind = iota + 1
	// KindTransportUnavailable: no transport in the chain produced a response.
	KindTransportUnavailable
	// KindMalformedResponse: the peer answered 2xx but the body did not decode.
	KindMalformedResponse
	// KindPeerRejected: the peer was reachable but returned a non-404 error status.
	KindPeerRejected
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransportUnavailable:
		return "transport_unavailable"
	case KindMalformedResponse:
		return "malformed_response"
	case KindPeerRejected:
		return "peer_rejected"
	}
	return "unknown"
}

// CallError is the single error type surfaced by the client. Exactly one of
// {typed result, *CallError} comes back from every invocation.
type CallError struct {
	Kind   Kind
	Peer   string
	Path   string
	Status int   // last HTTP status seen, 0 if no transport responded
	Err    error // underlying cause, may be nil
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mesh call %s %s: %s: %v", e.Peer, e.Path, e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("mesh call %s %s: %s (status %d)", e.Peer, e.Path, e.Kind, e.Status)
	}
	return fmt.Sprintf("mesh call %s %s: %s", e.Peer, e.Path, e.Kind)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, or 0 for a nil/foreign error.
func KindOf(err error) Kind {
	if ce, ok := err.(*CallError); ok {
		return ce.Kind
	}
	return 0
}
