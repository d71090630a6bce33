package domain

import "time"

// Binding is the persisted 1:1 association between a local account and a
// remote identity, scoped by the provider host that issued the identity so
// that multiple provider environments can share one database.
//
// Within a provider host the mapping is bijective: at most one binding per
// account and at most one per identity. A binding is written once and never
// updated in place; rebinding is an administrative action outside this service.
type Binding struct {
	AccountID    int64
	IdentityID   string // opaque identity id issued by the provider (UUID)
	ProviderHost string
	CreatedAt    time.Time
}
