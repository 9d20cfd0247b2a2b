package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/medicineapp/pkg/service"
	"github.com/example/medicineapp/pkg/stock"
)

type draftOrderReq struct {
	Date           string   `json:"date"`
	DoctorName     string   `json:"doctorName"`
	PatientName    string   `json:"patientName"`
	HN             string   `json:"hn"`
	BoilingMethods []string `json:"boilingMethods"`
	// Raw so that non-object entries drop out individually instead of
	// failing the whole request.
	OrderedMedicines []json.RawMessage `json:"orderedMedicines"`
}

type medicineItem struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

// POST /api/orders/draft
func (s *Server) createDraft(c *gin.Context) {
	var req draftOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body"})
		return
	}

	medicines := make([]service.MedicineInput, 0, len(req.OrderedMedicines))
	for _, raw := range req.OrderedMedicines {
		var m medicineItem
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		medicines = append(medicines, service.MedicineInput{Name: m.Name, Weight: m.Weight, Unit: m.Unit})
	}

	orderID, orderCode, err := s.orders.CreateDraft(c.Request.Context(), service.DraftRequest{
		Date:             req.Date,
		DoctorName:       req.DoctorName,
		PatientName:      req.PatientName,
		HN:               req.HN,
		BoilingMethods:   req.BoilingMethods,
		OrderedMedicines: medicines,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orderId": orderID, "orderCode": orderCode})
}

// GET /api/orders/:id
func (s *Server) getOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := s.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

// POST /api/orders/:id/confirm
func (s *Server) confirmOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.orders.Confirm(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/orders?status=&date=&doctor=&hn=&patient=
func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.List(c.Request.Context(), service.ListQuery{
		Status:  c.DefaultQuery("status", "confirmed"),
		Date:    c.Query("date"),
		Doctor:  c.Query("doctor"),
		HN:      c.Query("hn"),
		Patient: c.Query("patient"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

type stockPayload struct {
	Stock []stock.Record `json:"stock"`
}

// GET /api/stock
func (s *Server) getStock(c *gin.Context) {
	records, err := s.stock.Load(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stock": records})
}

// PUT /api/stock
func (s *Server) saveStock(c *gin.Context) {
	var req stockPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body"})
		return
	}
	if err := s.stock.Save(c.Request.Context(), req.Stock); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/stock/seed
func (s *Server) seedStock(c *gin.Context) {
	var req stockPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body"})
		return
	}
	seeded, err := s.stock.EnsureSeed(c.Request.Context(), req.Stock)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "seeded": seeded})
}

// parseID rejects anything that is not a positive integer and writes the 400
// itself; the second return tells the handler to stop.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid id"})
		return 0, false
	}
	return id, true
}
