package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Facility Dashboard Stats ---
//

type FacilityStats struct {
	OpenRequests      int `json:"openRequests"`
	AcceptedRequests  int `json:"acceptedRequests"`
	FulfilledRequests int `json:"fulfilledRequests"`
	IncomingOffers    int `json:"incomingOffers"` // Pending offers across my open requests
}

// GetFacilityStats returns KPI data for the hospital / blood bank dashboard
// GET /v1/facility/dashboard-stats
func (h *Handlers) GetFacilityStats(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	facilityID := userID_raw.(int64)

	stats := FacilityStats{}

	// 1. Open Requests
	err := h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE requester_id = ? AND status = ?",
		facilityID, models.RequestPending).Scan(&stats.OpenRequests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count open requests"})
		return
	}

	// 2. Accepted / In-Fulfillment Requests
	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE requester_id = ? AND status IN (?, ?)",
		facilityID, models.RequestAccepted, models.RequestInFulfillment).Scan(&stats.AcceptedRequests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count accepted requests"})
		return
	}

	// 3. Fulfilled Requests
	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE requester_id = ? AND status = ?",
		facilityID, models.RequestFulfilled).Scan(&stats.FulfilledRequests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count fulfilled requests"})
		return
	}

	// 4. Incoming Offers on Open Requests
	err = h.DB.QueryRow(`
		SELECT COUNT(*)
		FROM offers o
		JOIN blood_requests br ON o.request_id = br.id
		WHERE br.requester_id = ? AND br.status = ? AND o.status = ?`,
		facilityID, models.RequestPending, models.OfferPending).Scan(&stats.IncomingOffers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count incoming offers"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

//
// --- Blood Bank Supplier Dashboard Stats ---
//

type BankStats struct {
	OpenMarketplace int `json:"openMarketplace"` // Pending requests from others open to banks
	MyPendingOffers int `json:"myPendingOffers"`
	MyWonOffers     int `json:"myWonOffers"`
	StockUnits      int `json:"stockUnits"` // Total units across inventory
}

// GetBankStats returns KPI data for the supplier side of the blood bank dashboard
// GET /v1/bank/dashboard-stats
func (h *Handlers) GetBankStats(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)

	stats := BankStats{}

	// 1. Open Marketplace Requests
	err := h.DB.QueryRow(`
		SELECT COUNT(*) FROM blood_requests
		WHERE status = ? AND requester_id != ? AND request_source IN (?, ?)`,
		models.RequestPending, bankID, models.SourceBloodBanks, models.SourceBoth).Scan(&stats.OpenMarketplace)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count marketplace requests"})
		return
	}

	// 2. My Pending Offers
	err = h.DB.QueryRow("SELECT COUNT(*) FROM offers WHERE organization_id = ? AND status = ?",
		bankID, models.OfferPending).Scan(&stats.MyPendingOffers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending offers"})
		return
	}

	// 3. My Won Offers
	err = h.DB.QueryRow("SELECT COUNT(*) FROM offers WHERE organization_id = ? AND status = ?",
		bankID, models.OfferAccepted).Scan(&stats.MyWonOffers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count won offers"})
		return
	}

	// 4. Stock Units (COALESCE so an empty inventory reads 0, not NULL)
	err = h.DB.QueryRow("SELECT COALESCE(SUM(units_available), 0) FROM inventory_items WHERE organization_id = ?",
		bankID).Scan(&stats.StockUnits)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum inventory"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

//
// --- Regulator Dashboard Stats ---
//

type RegulatorStats struct {
	TotalRequests    int `json:"totalRequests"`
	PendingRequests  int `json:"pendingRequests"`
	CriticalPending  int `json:"criticalPending"`
	FulfilledTotal   int `json:"fulfilledTotal"`
	RejectedTotal    int `json:"rejectedTotal"`
	ActiveFacilities int `json:"activeFacilities"`
}

// GetRegulatorStats returns platform-wide KPI data
// GET /v1/regulator/dashboard-stats
func (h *Handlers) GetRegulatorStats(c *gin.Context) {
	stats := RegulatorStats{}

	err := h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests").Scan(&stats.TotalRequests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count requests"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE status = ?",
		models.RequestPending).Scan(&stats.PendingRequests)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending requests"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE status = ? AND urgency = ?",
		models.RequestPending, models.UrgencyCritical).Scan(&stats.CriticalPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count critical requests"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE status = ?",
		models.RequestFulfilled).Scan(&stats.FulfilledTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count fulfilled requests"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM blood_requests WHERE status = ?",
		models.RequestRejected).Scan(&stats.RejectedTotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count rejected requests"})
		return
	}

	err = h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE role IN (?, ?) AND status = 'active'",
		models.RoleHospital, models.RoleBloodBank).Scan(&stats.ActiveFacilities)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count facilities"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
