package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/example/medicineapp/pkg/models"
	"github.com/example/medicineapp/pkg/repository"
)

// ValidationError carries the message for the first failed required-field
// check. The HTTP layer maps it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DraftRequest is the untrusted draft-order payload before shaping.
type DraftRequest struct {
	Date             string
	DoctorName       string
	PatientName      string
	HN               string
	BoilingMethods   []string
	OrderedMedicines []MedicineInput
}

// MedicineInput is one untrusted item entry. Entries failing the field checks
// are dropped, not rejected.
type MedicineInput struct {
	Name   string
	Weight float64
	Unit   string
}

type OrderService struct {
	repo repository.OrderRepository

	// now and randomSuffix are swappable for tests.
	now          func() time.Time
	randomSuffix func() string
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{
		repo:         repo,
		now:          time.Now,
		randomSuffix: randomSuffix,
	}
}

// CreateDraft shapes and validates the request, then persists the order and
// its items atomically. Shaping is a filter step: malformed items and empty
// boiling methods are dropped; the required-field checks afterwards decide
// whether the whole request is rejected.
func (s *OrderService) CreateDraft(ctx context.Context, req DraftRequest) (int64, string, error) {
	orderDate := strings.TrimSpace(req.Date)
	doctorName := strings.TrimSpace(req.DoctorName)
	patientName := strings.TrimSpace(req.PatientName)
	hn := strings.TrimSpace(req.HN)
	methods := filterBoilingMethods(req.BoilingMethods)
	items := filterMedicines(req.OrderedMedicines)

	// Fixed check order; the first missing field wins.
	switch {
	case orderDate == "":
		return 0, "", &ValidationError{Message: "Missing date"}
	case doctorName == "":
		return 0, "", &ValidationError{Message: "Missing doctorName"}
	case patientName == "":
		return 0, "", &ValidationError{Message: "Missing patientName"}
	case hn == "":
		return 0, "", &ValidationError{Message: "Missing hn"}
	case len(items) == 0:
		return 0, "", &ValidationError{Message: "No ordered medicines"}
	case len(methods) == 0:
		return 0, "", &ValidationError{Message: "No boiling methods"}
	}

	order := &models.Order{
		OrderCode:      s.generateOrderCode(),
		OrderDate:      orderDate,
		DoctorName:     doctorName,
		PatientName:    patientName,
		HN:             hn,
		BoilingMethods: methods,
		Items:          items,
	}
	if err := s.repo.CreateDraft(ctx, order); err != nil {
		return 0, "", err
	}
	return order.ID, order.OrderCode, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) Confirm(ctx context.Context, id int64) error {
	return s.repo.Confirm(ctx, id)
}

// ListQuery holds the raw history filters. Status must be draft or confirmed.
type ListQuery struct {
	Status  string
	Date    string
	Doctor  string
	HN      string
	Patient string
}

func (s *OrderService) List(ctx context.Context, q ListQuery) ([]models.Order, error) {
	status := models.OrderStatus(q.Status)
	if status != models.OrderStatusDraft && status != models.OrderStatusConfirmed {
		return nil, &ValidationError{Message: "Invalid status"}
	}
	return s.repo.List(ctx, repository.OrderFilter{
		Status:  status,
		Date:    strings.TrimSpace(q.Date),
		Doctor:  strings.TrimSpace(q.Doctor),
		HN:      strings.TrimSpace(q.HN),
		Patient: strings.TrimSpace(q.Patient),
	})
}

// generateOrderCode builds the human-facing code: creation time plus a random
// suffix. Practically unique without a coordination service.
func (s *OrderService) generateOrderCode() string {
	return "ord_" + strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + s.randomSuffix()
}

func filterMedicines(in []MedicineInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for _, m := range in {
		name := strings.TrimSpace(m.Name)
		unit := strings.TrimSpace(m.Unit)
		if name == "" || unit == "" {
			continue
		}
		if math.IsNaN(m.Weight) || math.IsInf(m.Weight, 0) || m.Weight <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			MedicineName:   name,
			MedicineWeight: m.Weight,
			MedicineUnit:   unit,
		})
	}
	return items
}

func filterBoilingMethods(in []string) []string {
	methods := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			methods = append(methods, v)
		}
	}
	return methods
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}
