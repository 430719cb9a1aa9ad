package shipping

import (
	"strings"
	"sync"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Registry is the process-wide code -> constructor map. Codes are
// case-insensitive; an unknown code fails with InvalidProvider and a
// constructor error fails with ProviderError.
type Registry struct {
	mu           sync.RWMutex
	constructors map[ProviderCode]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[ProviderCode]Constructor)}
}

func normalize(code ProviderCode) ProviderCode {
	return ProviderCode(strings.ToLower(string(code)))
}

// Register binds a ProviderCode to its Constructor. Codes are normalized to
// lower-case so lookups are case-insensitive.
func (r *Registry) Register(code ProviderCode, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[normalize(code)] = ctor
}

// Build looks up code (case-insensitively) and constructs a provider from creds.
func (r *Registry) Build(code ProviderCode, creds Credentials) (ShippingProvider, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[normalize(code)]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.Wrap(domain.ErrInvalidProvider, string(code), nil)
	}

	p, err := ctor(creds)
	if err != nil {
		return nil, domain.Wrap(domain.ErrProviderError, "init "+string(code), err)
	}

	return p, nil
}

// Codes returns the registered provider codes.
func (r *Registry) Codes() []ProviderCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderCode, 0, len(r.constructors))
	for c := range r.constructors {
		out = append(out, c)
	}

	return out
}
