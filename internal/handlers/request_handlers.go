package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Blood Request Handlers (Facility: Hospital / Blood Bank) ---
//

// CreateBloodRequestInput defines the JSON for creating a request.
type CreateBloodRequestInput struct {
	Type                models.RequestType   `json:"type" binding:"required"`
	BloodGroup          string               `json:"bloodGroup,omitempty"`
	Genotype            string               `json:"genotype,omitempty"`
	UnitsNeeded         int                  `json:"unitsNeeded" binding:"required,gt=0"`
	MinUnitsBankCanSend int                  `json:"minUnitsBankCanSend,omitempty"`
	NeededBy            time.Time            `json:"neededBy" binding:"required"`
	Urgency             models.UrgencyLevel  `json:"urgency,omitempty"`
	RequestSource       models.RequestSource `json:"requestSource,omitempty"`
}

// CreateBloodRequest is the handler for POST /v1/facility/blood-requests
func (h *Handlers) CreateBloodRequest(c *gin.Context) {
	// 1. --- Get Issuer ID ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)

	// 2. --- Bind & Validate JSON ---
	var input CreateBloodRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRequestType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request type"})
		return
	}

	// Blood group is mandatory for whole-blood requests, meaningless otherwise.
	if input.Type == models.RequestTypeBlood {
		if !models.ValidBloodGroup(input.BloodGroup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid blood group is required for Blood requests"})
			return
		}
	} else if input.BloodGroup != "" && !models.ValidBloodGroup(input.BloodGroup) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
		return
	}

	if input.Genotype != "" && !models.ValidGenotype(input.Genotype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid genotype"})
		return
	}

	if input.Urgency == "" {
		input.Urgency = models.UrgencyRoutine
	}
	if !models.ValidUrgencyLevel(input.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid urgency level"})
		return
	}

	if input.RequestSource == "" {
		input.RequestSource = models.SourceBoth
	}
	if !models.ValidRequestSource(input.RequestSource) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request source"})
		return
	}

	if !input.NeededBy.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "neededBy must be in the future"})
		return
	}

	if input.MinUnitsBankCanSend < 0 || input.MinUnitsBankCanSend > input.UnitsNeeded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minUnitsBankCanSend must be between 0 and unitsNeeded"})
		return
	}

	// 3. --- Insert Request ---
	now := time.Now()
	reference := uuid.NewString()

	query := `
		INSERT INTO blood_requests
		(reference, requester_id, type, blood_group, genotype, units_needed,
		 min_units_bank_can_send, needed_by, urgency, request_source, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var minUnits interface{}
	if input.MinUnitsBankCanSend > 0 {
		minUnits = input.MinUnitsBankCanSend
	}

	result, err := h.DB.Exec(query,
		reference, requesterID, input.Type,
		nullIfEmpty(input.BloodGroup), nullIfEmpty(input.Genotype),
		input.UnitsNeeded, minUnits, input.NeededBy,
		input.Urgency, input.RequestSource, models.RequestPending, now, now,
	)
	if err != nil {
		h.Log.Error("failed to insert blood request", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	requestID, _ := result.LastInsertId()

	// 4. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Blood request created successfully",
		"requestId": requestID,
		"reference": reference,
		"status":    models.RequestPending,
	})
}

// GetMyBloodRequests is the handler for GET /v1/facility/blood-requests
// Supports an optional ?status= filter.
func (h *Handlers) GetMyBloodRequests(c *gin.Context) {
	// 1. --- Get Issuer ID ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)

	// 2. --- Build Query ---
	query := `
		SELECT br.id, br.reference, br.requester_id, br.type, br.blood_group, br.genotype,
		       br.units_needed, br.min_units_bank_can_send, br.needed_by, br.urgency,
		       br.request_source, br.status, br.rejection_reason, br.created_at, br.updated_at,
		       (SELECT COUNT(*) FROM offers o WHERE o.request_id = br.id) AS offer_count
		FROM blood_requests br
		WHERE br.requester_id = ?`
	args := []interface{}{requesterID}

	if status := c.Query("status"); status != "" {
		if !models.ValidRequestStatus(models.RequestStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query += " AND br.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY br.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows ---
	requests, err := scanBloodRequests(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan request data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetBloodRequestDetails is the handler for GET /v1/facility/blood-requests/:id
func (h *Handlers) GetBloodRequestDetails(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)
	requestID := c.Param("id")

	// 2. --- Fetch Request & Verify Ownership ---
	var req models.BloodRequest
	query := `
		SELECT id, reference, requester_id, type, blood_group, genotype, units_needed,
		       min_units_bank_can_send, needed_by, urgency, request_source, status,
		       rejection_reason, created_at, updated_at
		FROM blood_requests
		WHERE id = ? AND requester_id = ?`

	err := h.DB.QueryRow(query, requestID, requesterID).Scan(
		&req.ID, &req.Reference, &req.RequesterID, &req.Type, &req.BloodGroup, &req.Genotype,
		&req.UnitsNeeded, &req.MinUnitsBankCanSend, &req.NeededBy, &req.Urgency,
		&req.RequestSource, &req.Status, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	// 3. --- Count Offers ---
	err = h.DB.QueryRow("SELECT COUNT(*) FROM offers WHERE request_id = ?", req.ID).Scan(&req.OfferCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// CancelBloodRequest is the handler for PATCH /v1/facility/blood-requests/:id/cancel
// Only the issuer can cancel, and only while the request is still Pending.
func (h *Handlers) CancelBloodRequest(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)
	requestID := c.Param("id")

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Request & Check Status ---
	var status models.RequestStatus
	query := "SELECT status FROM blood_requests WHERE id = ? AND requester_id = ? FOR UPDATE"
	err = tx.QueryRow(query, requestID, requesterID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	if !status.Cancellable() {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("A request in status '%s' can no longer be cancelled", status),
			"code":  CodeAlreadyTerminal,
		})
		return
	}

	// 4. --- Cancel Request & Reject Open Offers ---
	_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
		models.RequestCancelled, time.Now(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel request"})
		return
	}

	// Any bank that already bid gets its offer closed and a notification.
	rows, err := tx.Query("SELECT id, organization_id FROM offers WHERE request_id = ? AND status = ? FOR UPDATE",
		requestID, models.OfferPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch open offers"})
		return
	}

	type openOffer struct {
		ID             int64
		OrganizationID int64
	}
	var openOffers []openOffer
	for rows.Next() {
		var o openOffer
		if err := rows.Scan(&o.ID, &o.OrganizationID); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan offer"})
			return
		}
		openOffers = append(openOffers, o)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read open offers"})
		return
	}

	if len(openOffers) > 0 {
		_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE request_id = ? AND status = ?",
			models.OfferRejected, time.Now(), requestID, models.OfferPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close open offers"})
			return
		}

		for _, o := range openOffers {
			message := fmt.Sprintf("Request #%s was cancelled by the issuer. Your offer has been closed.", requestID)
			link := fmt.Sprintf("/blood-requests/%s", requestID)
			if err := h.AddNotification(tx, o.OrganizationID, message, link); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
				return
			}
		}
	}

	// 5. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request cancelled",
		"status":  models.RequestCancelled,
	})
}

// ConfirmDelivery is the handler for PATCH /v1/facility/blood-requests/:id/confirm-delivery
// The issuer acknowledges receipt: InFulfillment -> Fulfilled. The rider who
// carried the delivery becomes Available again.
func (h *Handlers) ConfirmDelivery(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)
	requestID := c.Param("id")

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Request & Check Status ---
	var status models.RequestStatus
	query := "SELECT status FROM blood_requests WHERE id = ? AND requester_id = ? FOR UPDATE"
	err = tx.QueryRow(query, requestID, requesterID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	if status.Terminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Request is already in terminal status '%s'", status),
			"code":  CodeAlreadyTerminal,
		})
		return
	}
	if !status.CanTransition(models.RequestFulfilled) || status != models.RequestInFulfillment {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Delivery can only be confirmed while in fulfillment (current status: %s)", status),
		})
		return
	}

	// 4. --- Mark Fulfilled ---
	_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
		models.RequestFulfilled, time.Now(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}

	// 5. --- Release Rider & Notify Winning Bank ---
	var winnerOrgID int64
	var riderID sql.NullInt64
	err = tx.QueryRow("SELECT organization_id, rider_id FROM offers WHERE request_id = ? AND status = ?",
		requestID, models.OfferAccepted).Scan(&winnerOrgID, &riderID)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch accepted offer"})
		return
	}

	if err == nil {
		if riderID.Valid {
			_, err = tx.Exec("UPDATE riders SET status = ?, updated_at = ? WHERE id = ?",
				models.RiderAvailable, time.Now(), riderID.Int64)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release rider"})
				return
			}
		}

		message := fmt.Sprintf("Delivery for request #%s has been confirmed by the issuer.", requestID)
		link := fmt.Sprintf("/blood-requests/%s", requestID)
		if err := h.AddNotification(tx, winnerOrgID, message, link); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
			return
		}
	}

	// 6. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery confirmed",
		"status":  models.RequestFulfilled,
	})
}

//
// --- Background Worker ---
//

// ProcessExpiredRequests cancels Pending requests whose needed_by deadline
// has passed and notifies their issuers. Called on a ticker from main.
func (h *Handlers) ProcessExpiredRequests() {
	rows, err := h.DB.Query(
		"SELECT id, requester_id FROM blood_requests WHERE status = ? AND needed_by < ?",
		models.RequestPending, time.Now())
	if err != nil {
		h.Log.Error("expiry sweep: query failed", logger.Error(err))
		return
	}

	type expired struct {
		ID          int64
		RequesterID int64
	}
	var batch []expired
	for rows.Next() {
		var e expired
		if err := rows.Scan(&e.ID, &e.RequesterID); err != nil {
			rows.Close()
			h.Log.Error("expiry sweep: scan failed", logger.Error(err))
			return
		}
		batch = append(batch, e)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		h.Log.Error("expiry sweep: read failed", logger.Error(err))
		return
	}

	for _, e := range batch {
		tx, err := h.DB.Begin()
		if err != nil {
			h.Log.Error("expiry sweep: begin failed", logger.Error(err))
			return
		}

		// Re-check under lock; an offer may have been accepted since the scan.
		var status models.RequestStatus
		err = tx.QueryRow("SELECT status FROM blood_requests WHERE id = ? FOR UPDATE", e.ID).Scan(&status)
		if err != nil || status != models.RequestPending {
			tx.Rollback()
			continue
		}

		_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
			models.RequestCancelled, time.Now(), e.ID)
		if err != nil {
			tx.Rollback()
			h.Log.Error("expiry sweep: update failed", logger.Int64("requestId", e.ID), logger.Error(err))
			continue
		}

		_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE request_id = ? AND status = ?",
			models.OfferRejected, time.Now(), e.ID, models.OfferPending)
		if err != nil {
			tx.Rollback()
			h.Log.Error("expiry sweep: offer close failed", logger.Int64("requestId", e.ID), logger.Error(err))
			continue
		}

		message := fmt.Sprintf("Your blood request #%d expired before it was fulfilled and has been cancelled.", e.ID)
		link := fmt.Sprintf("/blood-requests/%d", e.ID)
		if err := h.AddNotification(tx, e.RequesterID, message, link); err != nil {
			tx.Rollback()
			continue
		}

		if err := tx.Commit(); err != nil {
			h.Log.Error("expiry sweep: commit failed", logger.Int64("requestId", e.ID), logger.Error(err))
			continue
		}
		h.Log.Info("expired request cancelled", logger.Int64("requestId", e.ID))
	}
}

//
// --- Scan Helper ---
//

// scanBloodRequests reads rows produced by the standard request column list
// (with a trailing offer_count and optional requester name).
func scanBloodRequests(rows *sql.Rows) ([]models.BloodRequest, error) {
	requests := []models.BloodRequest{}
	for rows.Next() {
		var req models.BloodRequest
		if err := rows.Scan(
			&req.ID, &req.Reference, &req.RequesterID, &req.Type, &req.BloodGroup, &req.Genotype,
			&req.UnitsNeeded, &req.MinUnitsBankCanSend, &req.NeededBy, &req.Urgency,
			&req.RequestSource, &req.Status, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
			&req.OfferCount,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
