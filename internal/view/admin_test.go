package view

import (
	"context"
	"errors"
	"testing"

	"stayfront/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminAPI struct {
	mock.Mock
}

func (m *mockAdminAPI) Owners(ctx context.Context) ([]models.Owner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Owner), args.Error(1)
}

func (m *mockAdminAPI) Payments(ctx context.Context) ([]models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func adminFixtureOwners() []models.Owner {
	return []models.Owner{
		{ID: 1, FullName: "Maria Santos", Email: "maria@resorts.ph", City: "Cebu"},
		{ID: 2, FullName: "Juan dela Cruz", Email: "juan.delacruz@mail.com", City: "Manila"},
		{ID: 3, FullName: "Anna Reyes", Email: "anna@santoshotels.com", City: "Davao"},
	}
}

func TestAdminOwnersSearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{"empty passes all", "", []int64{1, 2, 3}},
		{"name case insensitive", "SANTOS", []int64{1, 3}},
		{"email substring", "delacruz", []int64{2}},
		{"whitespace trimmed", "  maria  ", []int64{1}},
		{"no match", "zzz", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockAdminAPI)
			api.On("Owners", mock.Anything).Return(adminFixtureOwners(), nil)

			a := NewAdmin(api, zerolog.Nop())
			got, err := a.Owners(context.Background(), tt.search, 1)
			require.NoError(t, err)

			gotIDs := make([]int64, 0, len(got.Data))
			for _, o := range got.Data {
				gotIDs = append(gotIDs, o.ID)
			}
			assert.Equal(t, tt.want, gotIDs)
			assert.Equal(t, len(tt.want), got.Total)
		})
	}
}

func TestAdminOwnersPagination(t *testing.T) {
	owners := make([]models.Owner, 0, 23)
	for i := int64(1); i <= 23; i++ {
		owners = append(owners, models.Owner{ID: i, FullName: "Owner", Email: "o@x.com"})
	}
	api := new(mockAdminAPI)
	api.On("Owners", mock.Anything).Return(owners, nil)

	a := NewAdmin(api, zerolog.Nop())

	page, err := a.Owners(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 23, page.Total)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, int64(21), page.Data[0].ID)

	// Выход за границы прижимается к последней странице
	page, err = a.Owners(context.Background(), "", 99)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)

	page, err = a.Owners(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Data, 10)
}

func TestAdminOwnersFetchError(t *testing.T) {
	api := new(mockAdminAPI)
	api.On("Owners", mock.Anything).Return(nil, errors.New("backend down"))

	a := NewAdmin(api, zerolog.Nop())
	_, err := a.Owners(context.Background(), "", 1)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestAdminPaymentsSummary(t *testing.T) {
	api := new(mockAdminAPI)
	api.On("Payments", mock.Anything).Return([]models.Invoice{
		{ID: 1, Amount: 500, Status: models.InvoicePaid},
		{ID: 2, Amount: 300, Status: models.InvoicePaid},
		{ID: 3, Amount: 200, Status: models.InvoicePending},
		{ID: 4, Amount: 999, Status: models.InvoiceFailed},
	}, nil)

	a := NewAdmin(api, zerolog.Nop())
	page, err := a.Payments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(800), page.Summary.CollectedThisMonth)
	assert.Equal(t, int64(200), page.Summary.Pending)
	// Неуспешные платежи не попадают в денежные суммы
	assert.Equal(t, 1, page.Summary.FailedCount)
	assert.Len(t, page.Invoices, 4)
}

func TestAdminPaymentsEmpty(t *testing.T) {
	api := new(mockAdminAPI)
	api.On("Payments", mock.Anything).Return([]models.Invoice{}, nil)

	a := NewAdmin(api, zerolog.Nop())
	page, err := a.Payments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, page.Summary.CollectedThisMonth)
	assert.NotNil(t, page.Invoices)
}
