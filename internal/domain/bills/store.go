package bills

import "context"

// Store persists bills (text, metadata, attached PDFs).
// The filesystem implementation lives in the infrastructure layer.
type Store interface {
	Save(ctx context.Context, bill *Bill) error
	FindByID(ctx context.Context, identifier string) (*Bill, error)
	FindAll(ctx context.Context) ([]*Bill, error)
	SavePDF(ctx context.Context, identifier string, content []byte) (string, error)
}

// MockStore is a test implementation of Store with pluggable behavior.
type MockStore struct {
	SaveFunc     func(ctx context.Context, bill *Bill) error
	FindByIDFunc func(ctx context.Context, identifier string) (*Bill, error)
	FindAllFunc  func(ctx context.Context) ([]*Bill, error)
	SavePDFFunc  func(ctx context.Context, identifier string, content []byte) (string, error)
}

func (m *MockStore) Save(ctx context.Context, bill *Bill) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, bill)
	}
	return nil
}

func (m *MockStore) FindByID(ctx context.Context, identifier string) (*Bill, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, identifier)
	}
	return nil, nil
}

func (m *MockStore) FindAll(ctx context.Context) ([]*Bill, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) SavePDF(ctx context.Context, identifier string, content []byte) (string, error) {
	if m.SavePDFFunc != nil {
		return m.SavePDFFunc(ctx, identifier, content)
	}
	return "", nil
}

var _ Store = (*MockStore)(nil)
