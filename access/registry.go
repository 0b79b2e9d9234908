package access

import "log"

// Registry holds the authorized UIDs. Each length class has its own bounded
// slot list; adds beyond capacity or with an unsupported length are dropped.
type Registry struct {
	uids4 []UID
	uids7 []UID
	cap4  int
	cap7  int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapacity4 sets the number of 4-byte slots.
func WithCapacity4(n int) RegistryOption {
	return func(r *Registry) {
		if n >= 0 {
			r.cap4 = n
		}
	}
}

// WithCapacity7 sets the number of 7-byte slots.
func WithCapacity7(n int) RegistryOption {
	return func(r *Registry) {
		if n >= 0 {
			r.cap7 = n
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		cap4: DefaultCapacity4,
		cap7: DefaultCapacity7,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.uids4 = make([]UID, 0, r.cap4)
	r.uids7 = make([]UID, 0, r.cap7)
	return r
}

// Add stores a copy of uid. The caller is not told when the add is dropped.
func (r *Registry) Add(uid UID) {
	switch len(uid) {
	case UIDLength4:
		if len(r.uids4) >= r.cap4 {
			log.Printf("[Registry] 4-byte slots full, dropping %s", uid)
			return
		}
		r.uids4 = append(r.uids4, uid.Clone())
	case UIDLength7:
		if len(r.uids7) >= r.cap7 {
			log.Printf("[Registry] 7-byte slots full, dropping %s", uid)
			return
		}
		r.uids7 = append(r.uids7, uid.Clone())
	default:
		log.Printf("[Registry] unsupported uid length %d, dropping", len(uid))
	}
}

// IsAuthorized reports whether uid matches a stored entry exactly.
func (r *Registry) IsAuthorized(uid UID) bool {
	var list []UID
	switch len(uid) {
	case UIDLength4:
		list = r.uids4
	case UIDLength7:
		list = r.uids7
	default:
		return false
	}
	for _, known := range list {
		if known.Equal(uid) {
			return true
		}
	}
	return false
}

// SeedDefaults adds DefaultUIDs.
func (r *Registry) SeedDefaults() {
	for _, uid := range DefaultUIDs {
		r.Add(uid)
	}
}

// Reset empties both slot lists. Capacities are kept.
func (r *Registry) Reset() {
	r.uids4 = r.uids4[:0]
	r.uids7 = r.uids7[:0]
}

// Len returns the number of stored 4-byte and 7-byte UIDs.
func (r *Registry) Len() (n4, n7 int) {
	return len(r.uids4), len(r.uids7)
}
