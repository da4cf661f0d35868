package reference

import (
	"context"

	"vcbot/internal/domain/billtype"
)

// Store is the durable persistence contract for the reference counters.
// Implementations live in the infrastructure layer.
//
// Save must be all-or-nothing with respect to process crash: a subsequent
// Load observes either the previous complete mapping or the new one, never
// partial content. Implementations must tolerate concurrent Save calls
// (the allocator routes all writes through its lock, but other processes'
// tooling may race on the same backing medium).
type Store interface {
	// Load reads the current persisted state. A missing backing medium yields
	// an empty mapping (first run). A present but unparseable or invalid one
	// yields apperror.CodeCorruptStore.
	Load(ctx context.Context) (map[billtype.BillType]Reference, error)

	// Save durably writes the full mapping.
	Save(ctx context.Context, refs map[billtype.BillType]Reference) error
}

// MockStore is a test implementation of Store with pluggable behavior.
type MockStore struct {
	LoadFunc func(ctx context.Context) (map[billtype.BillType]Reference, error)
	SaveFunc func(ctx context.Context, refs map[billtype.BillType]Reference) error
}

// Load implements Store.
func (m *MockStore) Load(ctx context.Context) (map[billtype.BillType]Reference, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return map[billtype.BillType]Reference{}, nil
}

// Save implements Store.
func (m *MockStore) Save(ctx context.Context, refs map[billtype.BillType]Reference) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, refs)
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ Store = (*MockStore)(nil)
