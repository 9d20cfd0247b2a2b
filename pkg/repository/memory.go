package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/medicineapp/pkg/models"
)

// MemoryOrderRepository is an in-process OrderRepository used by tests. It
// mirrors the MySQL implementation's semantics: atomic draft insert, the
// draft-only confirm guard, filter matching and the ListLimit cap.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*models.Order

	// Now is swappable so tests can pin timestamps.
	Now func() time.Time
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		nextID: 1,
		orders: make(map[int64]*models.Order),
		Now:    time.Now,
	}
}

func (r *MemoryOrderRepository) CreateDraft(ctx context.Context, order *models.Order) error {
	encoded, err := encodeBoilingMethods(order.BoilingMethods)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	order.BoilingMethodsJSON = encoded
	order.Status = models.OrderStatusDraft
	order.CreatedAt = r.Now()
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}

	stored := cloneOrder(order)
	r.orders[order.ID] = &stored
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order := cloneOrder(stored)
	order.BoilingMethods, _ = decodeBoilingMethods(order.BoilingMethodsJSON)
	return &order, nil
}

func (r *MemoryOrderRepository) Confirm(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok || stored.Status != models.OrderStatusDraft {
		return ErrNotDraft
	}
	now := r.Now()
	stored.Status = models.OrderStatusConfirmed
	stored.ConfirmedAt = &now
	return nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]models.Order, 0)
	for _, stored := range r.orders {
		if stored.Status != f.Status {
			continue
		}
		if f.Date != "" && stored.OrderDate != f.Date {
			continue
		}
		if !containsIgnoreCase(stored.DoctorName, f.Doctor) ||
			!containsIgnoreCase(stored.PatientName, f.Patient) ||
			!containsIgnoreCase(stored.HN, f.HN) {
			continue
		}
		order := cloneOrder(stored)
		order.BoilingMethods, _ = decodeBoilingMethods(order.BoilingMethodsJSON)
		matched = append(matched, order)
	}

	// Most recently actioned first: confirmed_at when set, else created_at.
	sort.Slice(matched, func(i, j int) bool {
		return actionedAt(&matched[i]).After(actionedAt(&matched[j]))
	})
	if len(matched) > ListLimit {
		matched = matched[:ListLimit]
	}
	return matched, nil
}

func actionedAt(o *models.Order) time.Time {
	if o.ConfirmedAt != nil {
		return *o.ConfirmedAt
	}
	return o.CreatedAt
}

func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneOrder(o *models.Order) models.Order {
	clone := *o
	clone.Items = make([]models.OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	if o.ConfirmedAt != nil {
		confirmed := *o.ConfirmedAt
		clone.ConfirmedAt = &confirmed
	}
	return clone
}
