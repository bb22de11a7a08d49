package scopecache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: Hit and Miss run on every
// cached request. Wrap slow sinks with hooks/async.
type Hooks interface {
	// A cached response was served; the handler did not run.
	Hit(storageKey string)
	// No usable entry; the handler ran.
	Miss(storageKey string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A stored value could not be unframed or decoded.
	CorruptEntry(storageKey string, err error)

	// A write advanced scope to version.
	VersionBumped(scope string, version int64)
	// Version store failure. op ∈ {"get", "bump"}.
	VersionError(op, scope string, err error)

	// A store failure was tolerated because Options.FailOpen is set.
	// op ∈ {"versions", "get", "set", "bump", "remove"}.
	StoreBypassed(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                         {}
func (NopHooks) Miss(string)                        {}
func (NopHooks) ProviderSetRejected(string)         {}
func (NopHooks) CorruptEntry(string, error)         {}
func (NopHooks) VersionBumped(string, int64)        {}
func (NopHooks) VersionError(string, string, error) {}
func (NopHooks) StoreBypassed(string, error)        {}

// MultiHooks fans every event out to each of its members in order.
type MultiHooks []Hooks

// NewMultiHooks drops nil members and returns NopHooks when none are left.
func NewMultiHooks(hs ...Hooks) Hooks {
	out := make(MultiHooks, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return NopHooks{}
	case 1:
		return out[0]
	}
	return out
}

func (m MultiHooks) Hit(k string) {
	for _, h := range m {
		h.Hit(k)
	}
}

func (m MultiHooks) Miss(k string) {
	for _, h := range m {
		h.Miss(k)
	}
}

func (m MultiHooks) ProviderSetRejected(k string) {
	for _, h := range m {
		h.ProviderSetRejected(k)
	}
}

func (m MultiHooks) CorruptEntry(k string, err error) {
	for _, h := range m {
		h.CorruptEntry(k, err)
	}
}

func (m MultiHooks) VersionBumped(scope string, v int64) {
	for _, h := range m {
		h.VersionBumped(scope, v)
	}
}

func (m MultiHooks) VersionError(op, scope string, err error) {
	for _, h := range m {
		h.VersionError(op, scope, err)
	}
}

func (m MultiHooks) StoreBypassed(op string, err error) {
	for _, h := range m {
		h.StoreBypassed(op, err)
	}
}
