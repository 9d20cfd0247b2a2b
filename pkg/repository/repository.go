package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/example/medicineapp/pkg/models"
)

// Sentinel texts are part of the wire contract: handlers send them verbatim
// in the error field of the JSON envelope.

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("Order not found")

// ErrNotDraft is returned by Confirm when zero rows matched the conditional
// update. It deliberately covers both "no such order" and "already confirmed":
// callers see a single conflict signal.
var ErrNotDraft = errors.New("Order is not in draft state")

// OrderFilter narrows List results. Status is required and validated by the
// caller; the rest are optional (empty string = no filter).
type OrderFilter struct {
	Status  models.OrderStatus
	Date    string // exact match on order_date
	Doctor  string // substring match, case-insensitive
	Patient string // substring match, case-insensitive
	HN      string // substring match, case-insensitive
}

// ListLimit caps List results. A growth guard, not pagination.
const ListLimit = 500

type OrderRepository interface {
	// CreateDraft inserts the order and all of its items in one transaction.
	// On return the order carries its storage-assigned ID.
	CreateDraft(ctx context.Context, order *models.Order) error
	// GetByID returns the fully hydrated order or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// Confirm transitions draft -> confirmed. ErrNotDraft when the order is
	// absent or not currently a draft.
	Confirm(ctx context.Context, id int64) error
	// List returns hydrated orders matching the filter, most recently
	// actioned first, capped at ListLimit rows.
	List(ctx context.Context, f OrderFilter) ([]models.Order, error)
}

// decodeBoilingMethods is the lenient read policy for the JSON column:
// malformed stored text yields an empty list, never an error. The second
// return reports whether the stored text was malformed so callers can log it.
func decodeBoilingMethods(raw string) ([]string, bool) {
	if raw == "" {
		return []string{}, true
	}
	var methods []string
	if err := json.Unmarshal([]byte(raw), &methods); err != nil {
		return []string{}, false
	}
	if methods == nil {
		return []string{}, true
	}
	return methods, true
}

func encodeBoilingMethods(methods []string) (string, error) {
	data, err := json.Marshal(methods)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
