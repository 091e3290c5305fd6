package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Regulator Handlers ---
//

// GetAllBloodRequests is the handler for GET /v1/regulator/blood-requests
// The regulatory body sees every request on the platform, filterable by
// status and urgency.
func (h *Handlers) GetAllBloodRequests(c *gin.Context) {
	query := `
		SELECT br.id, br.reference, br.requester_id, br.type, br.blood_group, br.genotype,
		       br.units_needed, br.min_units_bank_can_send, br.needed_by, br.urgency,
		       br.request_source, br.status, br.rejection_reason, br.created_at, br.updated_at,
		       (SELECT COUNT(*) FROM offers o WHERE o.request_id = br.id) AS offer_count
		FROM blood_requests br
		WHERE 1 = 1`
	args := []interface{}{}

	if status := c.Query("status"); status != "" {
		if !models.ValidRequestStatus(models.RequestStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query += " AND br.status = ?"
		args = append(args, status)
	}
	if urgency := c.Query("urgency"); urgency != "" {
		if !models.ValidUrgencyLevel(models.UrgencyLevel(urgency)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid urgency filter"})
			return
		}
		query += " AND br.urgency = ?"
		args = append(args, urgency)
	}
	query += " ORDER BY br.created_at DESC LIMIT 200"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	defer rows.Close()

	requests, err := scanBloodRequests(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan request data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// RejectBloodRequestInput defines the JSON for a compliance rejection.
type RejectBloodRequestInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectBloodRequest is the handler for PATCH /v1/regulator/blood-requests/:id/reject
// A compliance stop: only Pending requests can be rejected, and any open
// offers on them are closed in the same transaction.
func (h *Handlers) RejectBloodRequest(c *gin.Context) {
	// 1. --- Get ID & Bind Input ---
	requestID := c.Param("id")

	var input RejectBloodRequestInput
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

	// 3. --- Lock Request & Check Status ---
	var status models.RequestStatus
	var requesterID int64
	err = tx.QueryRow("SELECT requester_id, status FROM blood_requests WHERE id = ? FOR UPDATE", requestID).
		Scan(&requesterID, &status)
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
	if !status.CanTransition(models.RequestRejected) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("A request in status '%s' cannot be rejected", status),
		})
		return
	}

	// 4. --- Reject Request & Close Open Offers ---
	now := time.Now()
	_, err = tx.Exec("UPDATE blood_requests SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ?",
		models.RequestRejected, input.Reason, now, requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request"})
		return
	}

	_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE request_id = ? AND status = ?",
		models.OfferRejected, now, requestID, models.OfferPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close open offers"})
		return
	}

	// 5. --- Notify the Issuer ---
	message := fmt.Sprintf("Your request #%s was rejected by the regulator. Reason: %s", requestID, input.Reason)
	link := fmt.Sprintf("/blood-requests/%s", requestID)
	if err := h.AddNotification(tx, requesterID, message, link); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	// 6. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request rejected",
		"status":  models.RequestRejected,
	})
}
