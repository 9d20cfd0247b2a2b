package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/medicineapp/pkg/models"
	"github.com/example/medicineapp/pkg/repository"
)

func newService(t *testing.T) (*OrderService, *repository.MemoryOrderRepository) {
	t.Helper()
	repo := repository.NewMemoryOrderRepository()
	return NewOrderService(repo), repo
}

func validDraft() DraftRequest {
	return DraftRequest{
		Date:           "2025-01-15",
		DoctorName:     "Dr. Somsak",
		PatientName:    "Pranee",
		HN:             "HN-1001",
		BoilingMethods: []string{"boil-1h"},
		OrderedMedicines: []MedicineInput{
			{Name: "Ginger", Weight: 10, Unit: "g"},
		},
	}
}

func TestCreateDraftHappyPath(t *testing.T) {
	svc, _ := newService(t)

	id, code, err := svc.CreateDraft(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Regexp(t, regexp.MustCompile(`^ord_\d+_[0-9a-f]{8}$`), code)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDraft, order.Status)
	assert.Equal(t, code, order.OrderCode)
}

func TestCreateDraftValidationOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*DraftRequest)
		message string
	}{
		{"missing date", func(r *DraftRequest) { r.Date = "  " }, "Missing date"},
		{"missing doctor", func(r *DraftRequest) { r.DoctorName = "" }, "Missing doctorName"},
		{"missing patient", func(r *DraftRequest) { r.PatientName = "" }, "Missing patientName"},
		{"missing hn", func(r *DraftRequest) { r.HN = " " }, "Missing hn"},
		{"no medicines", func(r *DraftRequest) { r.OrderedMedicines = nil }, "No ordered medicines"},
		{"no methods", func(r *DraftRequest) { r.BoilingMethods = []string{"", "  "} }, "No boiling methods"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validDraft()
			tt.mutate(&req)
			_, _, err := svc.CreateDraft(ctx, req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestCreateDraftFirstFailureWins(t *testing.T) {
	svc, _ := newService(t)

	// Everything is wrong; the date check fires first.
	_, _, err := svc.CreateDraft(context.Background(), DraftRequest{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Missing date", ve.Message)
}

func TestCreateDraftDropsBadItems(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := validDraft()
	req.OrderedMedicines = []MedicineInput{
		{Name: "Ginger", Weight: 10, Unit: "g"},
		{Name: "", Weight: 5, Unit: "g"},         // no name
		{Name: "Licorice", Weight: 0, Unit: "g"}, // zero weight
		{Name: "Cinnamon", Weight: -2, Unit: "g"},
		{Name: "Clove", Weight: 3, Unit: "  "}, // no unit
	}

	id, _, err := svc.CreateDraft(ctx, req)
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Ginger", order.Items[0].MedicineName)
}

func TestCreateDraftAllItemsDropped(t *testing.T) {
	svc, _ := newService(t)

	req := validDraft()
	req.OrderedMedicines = []MedicineInput{
		{Name: "Ginger", Weight: 0, Unit: "g"},
	}

	_, _, err := svc.CreateDraft(context.Background(), req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "No ordered medicines", ve.Message)
}

func TestCreateDraftTrimsFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := validDraft()
	req.DoctorName = "  Dr. Somsak  "
	req.BoilingMethods = []string{" boil-1h ", "", "simmer-30m"}

	id, _, err := svc.CreateDraft(ctx, req)
	require.NoError(t, err)

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Somsak", order.DoctorName)
	assert.Equal(t, []string{"boil-1h", "simmer-30m"}, order.BoilingMethods)
}

func TestOrderCodeUsesCreationTime(t *testing.T) {
	svc, _ := newService(t)
	svc.now = func() time.Time { return time.UnixMilli(1736899200000) }
	svc.randomSuffix = func() string { return "deadbeef" }

	_, code, err := svc.CreateDraft(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "ord_1736899200000_deadbeef", code)
}

func TestConfirmLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, _, err := svc.CreateDraft(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(ctx, id))

	order, err := svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.ConfirmedAt)

	assert.ErrorIs(t, svc.Confirm(ctx, id), repository.ErrNotDraft)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.List(context.Background(), ListQuery{Status: "cancelled"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid status", ve.Message)
}

func TestListPassesTrimmedFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, _, err := svc.CreateDraft(ctx, validDraft())
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, id))

	orders, err := svc.List(ctx, ListQuery{Status: "confirmed", Doctor: "  somsak  "})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].ID)
}
