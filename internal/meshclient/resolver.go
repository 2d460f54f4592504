package meshclient

// Resolver maps a logical peer name to its ordered transport chain. The order
// is the fallback order: the first transport that yields a usable response
// wins.
type Resolver interface {
	Resolve(peer string) []Transport
}

// StaticResolver is a fixed peer → chain table built at startup.
type StaticResolver map[string][]Transport

func (r StaticResolver) Resolve(peer string) []Transport { return r[peer] }
