package bills

import (
	"context"
	"time"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/pkg/logger"
)

// Numberer issues reference numbers. Satisfied by reference.Service; bills
// never mint numbers themselves.
type Numberer interface {
	Allocate(ctx context.Context, bt billtype.BillType) (reference.Reference, error)
}

// Draft is the caller-supplied part of a new bill; the reference number and
// identifier are assigned by the service.
type Draft struct {
	Title       string
	BillType    billtype.BillType
	TextContent string
	Sponsor     string
	Metadata    map[string]string
}

// Service provides business logic for the bill catalog.
type Service struct {
	store    Store
	numberer Numberer
	now      func() time.Time
	log      *logger.Logger
}

// NewService creates a bill service.
func NewService(store Store, numberer Numberer, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		numberer: numberer,
		now:      time.Now,
		log:      log.WithComponent("bills"),
	}
}

// Create allocates the next reference number for the draft's type and
// persists the bill under the resulting identifier. If the bill save fails
// the allocated number is not rolled back; numbers are never reused.
func (s *Service) Create(ctx context.Context, draft Draft) (*Bill, error) {
	if !draft.BillType.Valid() {
		return nil, apperror.NewInvalidBillType(draft.BillType.String())
	}

	ref, err := s.numberer.Allocate(ctx, draft.BillType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bill := &Bill{
		Identifier:      MakeIdentifier(ref.BillType, ref.Number),
		Title:           draft.Title,
		BillType:        ref.BillType,
		ReferenceNumber: ref.Number,
		TextContent:     draft.TextContent,
		Sponsor:         draft.Sponsor,
		Metadata:        draft.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := bill.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, bill); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("bill created",
		"identifier", bill.Identifier,
		"title", bill.Title,
	)
	return bill, nil
}

// Get returns a bill by its canonical identifier.
func (s *Service) Get(ctx context.Context, identifier string) (*Bill, error) {
	if _, _, err := ParseIdentifier(identifier); err != nil {
		return nil, err
	}

	bill, err := s.store.FindByID(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFound("bill", identifier)
	}
	return bill, nil
}

// List returns all stored bills.
func (s *Service) List(ctx context.Context) ([]*Bill, error) {
	return s.store.FindAll(ctx)
}

// AttachPDF stores PDF content for an existing bill and records its path.
func (s *Service) AttachPDF(ctx context.Context, identifier string, content []byte) (*Bill, error) {
	bill, err := s.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, apperror.NewValidation("pdf content is empty")
	}

	path, err := s.store.SavePDF(ctx, identifier, content)
	if err != nil {
		return nil, err
	}

	bill.PDFPath = path
	bill.UpdatedAt = s.now()
	if err := s.store.Save(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}
