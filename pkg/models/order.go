package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// Order is a dispensary order for boiled herbal medicine. Boiling methods are
// stored as a JSON array in boiling_methods_json; BoilingMethods carries the
// decoded form on reads and is never written directly.
type Order struct {
	ID                 int64       `gorm:"primaryKey" json:"id"`
	OrderCode          string      `gorm:"type:varchar(64);uniqueIndex;not null" json:"orderCode"`
	OrderDate          string      `gorm:"type:varchar(32);not null" json:"date"`
	DoctorName         string      `gorm:"type:varchar(191);not null" json:"doctorName"`
	PatientName        string      `gorm:"type:varchar(191);not null" json:"patientName"`
	HN                 string      `gorm:"column:hn;type:varchar(64);not null" json:"hn"`
	BoilingMethodsJSON string      `gorm:"column:boiling_methods_json;type:text" json:"-"`
	Status             OrderStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt          time.Time   `json:"createdAt"`
	ConfirmedAt        *time.Time  `json:"confirmedAt"`

	BoilingMethods []string    `gorm:"-" json:"boilingMethods"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"orderedMedicines"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID             int64   `gorm:"primaryKey" json:"-"`
	OrderID        int64   `gorm:"not null;index" json:"-"`
	MedicineName   string  `gorm:"type:varchar(191);not null" json:"name"`
	MedicineWeight float64 `gorm:"type:decimal(10,2);not null" json:"weight"`
	MedicineUnit   string  `gorm:"type:varchar(32);not null" json:"unit"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
