package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/nimasrn/reservation-hub/pkg/pg/sqlitetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, kind model.NotificationKind, entityID int64) error {
	args := m.Called(ctx, kind, entityID)
	return args.Error(0)
}

// seqCodes hands out the given codes in order and repeats the last one.
type seqCodes struct {
	codes []string
	n     int
}

func (s *seqCodes) Generate(time.Time) string {
	code := s.codes[min(s.n, len(s.codes)-1)]
	s.n++
	return code
}

func seedStore(t *testing.T, db *pg.DB, name string, public bool) *model.Store {
	t.Helper()
	s, err := repository.NewStoreRepository(db).Create(context.Background(), &model.Store{
		Name:                      name,
		AcceptsPublicReservations: public,
	})
	require.NoError(t, err)
	return s
}

func seedCustomer(t *testing.T, db *pg.DB, name, phone string) *model.Customer {
	t.Helper()
	c, err := repository.NewCustomerRepository(db).Create(context.Background(), &model.Customer{
		Name:      name,
		Code:      fmt.Sprintf("C-%s-%d", name, time.Now().UnixNano()),
		Telephone: phone,
	})
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func newTestDB(t testing.TB) *pg.DB {
	return sqlitetest.Open(t, repository.Entities()...)
}
