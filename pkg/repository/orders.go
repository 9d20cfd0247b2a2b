package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/medicineapp/pkg/models"
)

// MySQLOrderRepository implements OrderRepository on top of gorm.
type MySQLOrderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMySQLOrderRepository(db *gorm.DB, logger *zap.Logger) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db, logger: logger}
}

func (r *MySQLOrderRepository) CreateDraft(ctx context.Context, order *models.Order) error {
	encoded, err := encodeBoilingMethods(order.BoilingMethods)
	if err != nil {
		return fmt.Errorf("failed to encode boiling methods: %w", err)
	}
	order.BoilingMethodsJSON = encoded
	order.Status = models.OrderStatusDraft

	// One transaction for the order row and every item row. Any failure
	// rolls back the whole set so readers never see a partial order.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			order.Items = items
			return fmt.Errorf("failed to insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			order.Items = items
			return fmt.Errorf("failed to insert order items: %w", err)
		}
		order.Items = items
		return nil
	})
}

func (r *MySQLOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var items []models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	order.Items = items
	order.BoilingMethods = r.methodsFor(&order)
	return &order, nil
}

func (r *MySQLOrderRepository) Confirm(ctx context.Context, id int64) error {
	// Conditional update is the only concurrency control: of any number of
	// concurrent confirms exactly one affects the row, the rest see conflict.
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusDraft).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusConfirmed,
			"confirmed_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to confirm order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotDraft
	}
	return nil
}

func (r *MySQLOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", f.Status)
	if f.Date != "" {
		query = query.Where("order_date = ?", f.Date)
	}
	if f.Doctor != "" {
		query = query.Where("doctor_name LIKE ?", "%"+f.Doctor+"%")
	}
	if f.HN != "" {
		query = query.Where("hn LIKE ?", "%"+f.HN+"%")
	}
	if f.Patient != "" {
		query = query.Where("patient_name LIKE ?", "%"+f.Patient+"%")
	}

	var orders []models.Order
	if err := query.Order("COALESCE(confirmed_at, created_at) DESC").Limit(ListLimit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	// One secondary query for all items instead of one per order.
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id IN ?", ids).Order("order_id ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	itemsByOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	for i := range orders {
		orders[i].BoilingMethods = r.methodsFor(&orders[i])
		if grouped, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = grouped
		} else {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

func (r *MySQLOrderRepository) methodsFor(order *models.Order) []string {
	methods, ok := decodeBoilingMethods(order.BoilingMethodsJSON)
	if !ok {
		r.logger.Warn("Failed to parse boiling methods for order", zap.Int64("order_id", order.ID))
	}
	return methods
}
