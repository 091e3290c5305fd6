package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Rider Handlers (Delivery Assignment) ---
//

// GetRiders is the handler for GET /v1/bank/riders
// Defaults to Available riders, which is the pick list for offer dispatch.
func (h *Handlers) GetRiders(c *gin.Context) {
	status := models.RiderStatus(c.DefaultQuery("status", string(models.RiderAvailable)))
	if !models.ValidRiderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rider status filter"})
		return
	}

	query := `
		SELECT id, full_name, phone_number, vehicle_type, status, created_at, updated_at
		FROM riders WHERE status = ? ORDER BY full_name ASC`

	rows, err := h.DB.Query(query, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch riders"})
		return
	}
	defer rows.Close()

	riders := []models.Rider{}
	for rows.Next() {
		var r models.Rider
		if err := rows.Scan(&r.ID, &r.FullName, &r.PhoneNumber, &r.VehicleType, &r.Status,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan rider"})
			return
		}
		riders = append(riders, r)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read rider data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"riders": riders})
}

// AssignRiderInput defines the JSON for attaching a rider to an offer.
type AssignRiderInput struct {
	RiderID int64 `json:"riderId" binding:"required,gt=0"`
}

// AssignRider is the handler for PATCH /v1/bank/offers/:id/assign-rider
// The submitting bank attaches (or replaces) the delivery rider on its own
// offer. The shipping fee is recomputed from the rider's vehicle rate, and
// the offer total is refreshed to stay the sum of its components.
func (h *Handlers) AssignRider(c *gin.Context) {
	// 1. --- Get IDs & Bind Input ---
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)
	offerID := c.Param("id")

	var input AssignRiderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Offer & Verify Ownership ---
	var offer models.Offer
	query := `
		SELECT id, organization_id, product_fee, card_charge, status
		FROM offers WHERE id = ? FOR UPDATE`
	err = tx.QueryRow(query, offerID).Scan(
		&offer.ID, &offer.OrganizationID, &offer.ProductFee, &offer.CardCharge, &offer.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer"})
		return
	}

	if offer.OrganizationID != bankID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only assign riders to your own offers"})
		return
	}
	if offer.Status == models.OfferRejected {
		c.JSON(http.StatusConflict, gin.H{
			"error": "This offer has been rejected",
			"code":  CodeAlreadyTerminal,
		})
		return
	}

	// 4. --- Lock Rider & Check Availability ---
	var rider models.Rider
	err = tx.QueryRow("SELECT id, vehicle_type, status FROM riders WHERE id = ? FOR UPDATE", input.RiderID).
		Scan(&rider.ID, &rider.VehicleType, &rider.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rider not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rider"})
		return
	}
	if !rider.Status.Dispatchable() {
		c.JSON(http.StatusConflict, gin.H{"error": "The selected rider is not available"})
		return
	}

	// 5. --- Recompute Fees & Update Offer ---
	offer.ShippingFee = h.getSettingFloat(tx, rider.ShippingRateKey(), h.Cfg.DefaultShippingRate)
	offer.RecomputeTotal()

	_, err = tx.Exec(`
		UPDATE offers SET rider_id = ?, shipping_fee = ?, total_amount = ?, updated_at = ?
		WHERE id = ?`,
		rider.ID, offer.ShippingFee, offer.TotalAmount, time.Now(), offer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign rider"})
		return
	}

	// 6. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Rider assigned",
		"shippingFee": offer.ShippingFee,
		"totalAmount": offer.TotalAmount,
	})
}

// DispatchOffer is the handler for POST /v1/bank/offers/:id/dispatch
// The winning bank starts the delivery leg: the parent request moves from
// Accepted to InFulfillment and the assigned rider goes On Delivery.
func (h *Handlers) DispatchOffer(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)
	offerID := c.Param("id")

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Offer & Verify ---
	var offer models.Offer
	query := "SELECT id, request_id, organization_id, rider_id, status FROM offers WHERE id = ? FOR UPDATE"
	err = tx.QueryRow(query, offerID).Scan(&offer.ID, &offer.RequestID, &offer.OrganizationID, &offer.RiderID, &offer.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer"})
		return
	}

	if offer.OrganizationID != bankID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only dispatch your own offers"})
		return
	}
	if offer.Status != models.OfferAccepted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only an accepted offer can be dispatched"})
		return
	}
	if !offer.RiderID.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assign a rider before dispatching"})
		return
	}

	// 4. --- Lock Rider & Re-Check Availability ---
	// Two offers can hold the same rider if both assignments saw it
	// Available; the dispatch that loses this lock must not double-book.
	var riderStatus models.RiderStatus
	err = tx.QueryRow("SELECT status FROM riders WHERE id = ? FOR UPDATE", offer.RiderID.Int64).
		Scan(&riderStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rider"})
		return
	}
	if !riderStatus.Dispatchable() {
		c.JSON(http.StatusConflict, gin.H{"error": "The assigned rider is no longer available"})
		return
	}

	// 5. --- Lock Request & Check Transition ---
	var reqStatus models.RequestStatus
	var requesterID int64
	err = tx.QueryRow("SELECT requester_id, status FROM blood_requests WHERE id = ? FOR UPDATE", offer.RequestID).
		Scan(&requesterID, &reqStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parent request"})
		return
	}

	if reqStatus.Terminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Request is already in terminal status '%s'", reqStatus),
			"code":  CodeAlreadyTerminal,
		})
		return
	}
	if !reqStatus.CanTransition(models.RequestInFulfillment) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Request cannot enter fulfillment from status '%s'", reqStatus),
		})
		return
	}

	// 6. --- Flip Request & Rider ---
	now := time.Now()
	_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
		models.RequestInFulfillment, now, offer.RequestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}

	_, err = tx.Exec("UPDATE riders SET status = ?, updated_at = ? WHERE id = ?",
		models.RiderOnDelivery, now, offer.RiderID.Int64)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rider"})
		return
	}

	// 7. --- Notify the Issuer ---
	message := fmt.Sprintf("Your request #%d is now out for delivery.", offer.RequestID)
	link := fmt.Sprintf("/blood-requests/%d", offer.RequestID)
	if err := h.AddNotification(tx, requesterID, message, link); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	// 8. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Delivery dispatched",
		"requestStatus": models.RequestInFulfillment,
	})
}

//
// --- Admin: Rider Management ---
//

// CreateRiderInput defines the JSON for registering a delivery agent.
type CreateRiderInput struct {
	FullName    string             `json:"fullName" binding:"required"`
	PhoneNumber string             `json:"phoneNumber" binding:"required"`
	VehicleType models.VehicleType `json:"vehicleType" binding:"required"`
}

// CreateRider is the handler for POST /v1/admin/riders
func (h *Handlers) CreateRider(c *gin.Context) {
	var input CreateRiderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidVehicleType(input.VehicleType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle type"})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO riders (full_name, phone_number, vehicle_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.FullName, input.PhoneNumber, input.VehicleType, models.RiderAvailable, now, now)
	if err != nil {
		h.Log.Error("failed to insert rider", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rider"})
		return
	}

	riderID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Rider created",
		"riderId": riderID,
	})
}

// UpdateRiderInput defines the JSON for updating a rider's status.
type UpdateRiderInput struct {
	Status models.RiderStatus `json:"status" binding:"required"`
}

// UpdateRider is the handler for PATCH /v1/admin/riders/:id
func (h *Handlers) UpdateRider(c *gin.Context) {
	riderID := c.Param("id")

	var input UpdateRiderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRiderStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rider status"})
		return
	}

	result, err := h.DB.Exec("UPDATE riders SET status = ?, updated_at = ? WHERE id = ?",
		input.Status, time.Now(), riderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rider"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rider not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rider updated"})
}
