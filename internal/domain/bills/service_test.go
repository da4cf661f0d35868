package bills

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/pkg/logger"
)

// stubNumberer hands out sequential numbers without persistence.
type stubNumberer struct {
	next map[billtype.BillType]int64
	err  error
}

func (s *stubNumberer) Allocate(_ context.Context, bt billtype.BillType) (reference.Reference, error) {
	if s.err != nil {
		return reference.Reference{}, s.err
	}
	if s.next == nil {
		s.next = map[billtype.BillType]int64{}
	}
	s.next[bt]++
	now := time.Now()
	return reference.Reference{BillType: bt, Number: s.next[bt], CreatedAt: now, UpdatedAt: now}, nil
}

func TestCreateAssignsIdentifierFromAllocator(t *testing.T) {
	ctx := context.Background()
	var saved *Bill
	store := &MockStore{
		SaveFunc: func(_ context.Context, b *Bill) error { saved = b; return nil },
	}
	svc := NewService(store, &stubNumberer{}, logger.Default())

	bill, err := svc.Create(ctx, Draft{
		Title:       "Test Act",
		BillType:    billtype.HR,
		TextContent: "text",
	})
	require.NoError(t, err)
	assert.Equal(t, "hr-1", bill.Identifier)
	assert.Equal(t, int64(1), bill.ReferenceNumber)
	require.NotNil(t, saved)
	assert.Equal(t, bill.Identifier, saved.Identifier)

	bill, err = svc.Create(ctx, Draft{Title: "Second", BillType: billtype.HR, TextContent: "text"})
	require.NoError(t, err)
	assert.Equal(t, "hr-2", bill.Identifier)
}

func TestCreatePropagatesAllocatorFailure(t *testing.T) {
	saves := 0
	store := &MockStore{
		SaveFunc: func(context.Context, *Bill) error { saves++; return nil },
	}
	svc := NewService(store, &stubNumberer{err: apperror.NewLockTimeout(nil)}, logger.Default())

	_, err := svc.Create(context.Background(), Draft{Title: "T", BillType: billtype.S, TextContent: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeLockTimeout))
	assert.Zero(t, saves)
}

func TestCreateValidatesDraft(t *testing.T) {
	svc := NewService(&MockStore{}, &stubNumberer{}, logger.Default())

	_, err := svc.Create(context.Background(), Draft{Title: "T", BillType: "nope", TextContent: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidBillType))

	_, err = svc.Create(context.Background(), Draft{Title: "  ", BillType: billtype.HR, TextContent: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(&MockStore{}, &stubNumberer{}, logger.Default())
	_, err := svc.Get(context.Background(), "hr-404")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetRejectsMalformedIdentifier(t *testing.T) {
	svc := NewService(&MockStore{}, &stubNumberer{}, logger.Default())
	_, err := svc.Get(context.Background(), "not an id")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAttachPDF(t *testing.T) {
	ctx := context.Background()
	existing := &Bill{
		Identifier:      "hr-7",
		Title:           "T",
		BillType:        billtype.HR,
		ReferenceNumber: 7,
		TextContent:     "x",
	}
	store := &MockStore{
		FindByIDFunc: func(_ context.Context, id string) (*Bill, error) { return existing, nil },
		SavePDFFunc: func(_ context.Context, id string, _ []byte) (string, error) {
			return "/data/pdfs/hr7.pdf", nil
		},
	}
	svc := NewService(store, &stubNumberer{}, logger.Default())

	bill, err := svc.AttachPDF(ctx, "hr-7", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "/data/pdfs/hr7.pdf", bill.PDFPath)

	_, err = svc.AttachPDF(ctx, "hr-7", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestParseIdentifier(t *testing.T) {
	bt, n, err := ParseIdentifier("hjres-15")
	require.NoError(t, err)
	assert.Equal(t, billtype.HJRes, bt)
	assert.Equal(t, int64(15), n)

	_, _, err = ParseIdentifier("hr-0")
	require.Error(t, err)

	_, _, err = ParseIdentifier("zz-9")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidBillType))
}
