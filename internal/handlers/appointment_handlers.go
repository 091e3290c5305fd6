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
// --- Appointment Handlers (Donation Scheduling) ---
//

// CreateAppointmentInput defines the JSON for booking a donation.
type CreateAppointmentInput struct {
	OrganizationID  int64                  `json:"organizationId" binding:"required,gt=0"`
	AppointmentDate time.Time              `json:"appointmentDate" binding:"required"`
	Type            models.AppointmentType `json:"type,omitempty"`
	DonationType    models.RequestType     `json:"donationType,omitempty"`
	RequestID       int64                  `json:"requestId,omitempty"`
}

// CreateAppointment is the handler for POST /v1/donor/appointments
// A donor books a donation slot at a facility, optionally tied to an open
// blood request that accepts donor fulfilment.
func (h *Handlers) CreateAppointment(c *gin.Context) {
	// 1. --- Get Donor ID & Bind Input ---
	userID_raw, _ := c.Get("userID")
	donorID := userID_raw.(int64)

	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Type == "" {
		input.Type = models.AppointmentScheduled
	}
	if !models.ValidAppointmentType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment type"})
		return
	}
	if input.DonationType == "" {
		input.DonationType = models.RequestTypeBlood
	}
	if !models.ValidRequestType(input.DonationType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation type"})
		return
	}
	if !input.AppointmentDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appointmentDate must be in the future"})
		return
	}

	// 2. --- Verify the Facility ---
	var orgRole models.Role
	err := h.DB.QueryRow("SELECT role FROM users WHERE id = ? AND status = 'active'", input.OrganizationID).Scan(&orgRole)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Facility not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up facility"})
		return
	}
	if !orgRole.Facility() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The selected organization is not a donation facility"})
		return
	}

	// 3. --- Verify the Linked Request (Optional) ---
	var requestID interface{}
	if input.RequestID > 0 {
		var status models.RequestStatus
		var source models.RequestSource
		err := h.DB.QueryRow("SELECT status, request_source FROM blood_requests WHERE id = ?", input.RequestID).
			Scan(&status, &source)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Linked request not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up request"})
			return
		}
		if status != models.RequestPending {
			c.JSON(http.StatusConflict, gin.H{"error": "The linked request is no longer open"})
			return
		}
		if !source.AcceptsDonors() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The linked request does not accept donor fulfilment"})
			return
		}
		requestID = input.RequestID
	}

	// 4. --- Insert Appointment ---
	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO appointments
		(donor_id, organization_id, request_id, appointment_date, type, donation_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donorID, input.OrganizationID, requestID, input.AppointmentDate,
		input.Type, input.DonationType, models.ApptScheduled, now, now)
	if err != nil {
		h.Log.Error("failed to insert appointment", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
		return
	}

	appointmentID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Appointment scheduled",
		"appointmentId": appointmentID,
		"status":        models.ApptScheduled,
	})
}

// GetMyAppointments is the handler for GET /v1/donor/appointments
func (h *Handlers) GetMyAppointments(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	donorID := userID_raw.(int64)

	query := `
		SELECT a.id, a.donor_id, a.organization_id, a.request_id, a.appointment_date,
		       a.type, a.donation_type, a.status, a.created_at, a.updated_at,
		       COALESCE(u.facility_name, u.full_name) AS facility_name
		FROM appointments a
		JOIN users u ON a.organization_id = u.id
		WHERE a.donor_id = ?
		ORDER BY a.appointment_date DESC`

	rows, err := h.DB.Query(query, donorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.DonorID, &a.OrganizationID, &a.RequestID, &a.AppointmentDate,
			&a.Type, &a.DonationType, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.FacilityName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan appointment"})
			return
		}
		appointments = append(appointments, a)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// GetFacilityAppointments is the handler for GET /v1/facility/appointments
// Supports an optional ?status= filter.
func (h *Handlers) GetFacilityAppointments(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)

	query := `
		SELECT a.id, a.donor_id, a.organization_id, a.request_id, a.appointment_date,
		       a.type, a.donation_type, a.status, a.created_at, a.updated_at,
		       u.full_name AS donor_name
		FROM appointments a
		JOIN users u ON a.donor_id = u.id
		WHERE a.organization_id = ?`
	args := []interface{}{organizationID}

	if status := c.Query("status"); status != "" {
		if !models.ValidAppointmentStatus(models.AppointmentStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query += " AND a.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY a.appointment_date ASC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.DonorID, &a.OrganizationID, &a.RequestID, &a.AppointmentDate,
			&a.Type, &a.DonationType, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.DonorName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan appointment"})
			return
		}
		appointments = append(appointments, a)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// ProcessAppointmentInput defines the JSON for a staff status transition.
type ProcessAppointmentInput struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// ProcessAppointment is the handler for PATCH /v1/facility/appointments/:id
// Facility staff walk appointments through Scheduled -> Confirmed ->
// Completed / No-Show / Cancelled. Completing a donation that was booked
// against an open donor-fulfillable request fulfils that request.
func (h *Handlers) ProcessAppointment(c *gin.Context) {
	// 1. --- Get IDs & Bind Input ---
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)
	appointmentID := c.Param("id")

	var input ProcessAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidAppointmentStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment status"})
		return
	}

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Appointment & Verify Ownership ---
	var appt models.Appointment
	query := `
		SELECT id, donor_id, request_id, status
		FROM appointments WHERE id = ? AND organization_id = ? FOR UPDATE`
	err = tx.QueryRow(query, appointmentID, organizationID).
		Scan(&appt.ID, &appt.DonorID, &appt.RequestID, &appt.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointment"})
		return
	}

	// 4. --- Check Transition ---
	if appt.Status.Terminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Appointment is already in terminal status '%s'", appt.Status),
			"code":  CodeAlreadyTerminal,
		})
		return
	}
	if !appt.Status.CanTransition(input.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot move appointment from '%s' to '%s'", appt.Status, input.Status),
		})
		return
	}

	// 5. --- Apply Transition ---
	now := time.Now()
	_, err = tx.Exec("UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?",
		input.Status, now, appt.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}

	// 6. --- Fulfil the Linked Request on Completion ---
	if input.Status == models.ApptCompleted && appt.RequestID.Valid {
		var reqStatus models.RequestStatus
		var requesterID int64
		err = tx.QueryRow("SELECT requester_id, status FROM blood_requests WHERE id = ? FOR UPDATE", appt.RequestID.Int64).
			Scan(&requesterID, &reqStatus)
		if err == nil && reqStatus.CanTransition(models.RequestFulfilled) && reqStatus == models.RequestPending {
			_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
				models.RequestFulfilled, now, appt.RequestID.Int64)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fulfil linked request"})
				return
			}

			// Competing bank offers on a donor-fulfilled request are closed.
			_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE request_id = ? AND status = ?",
				models.OfferRejected, now, appt.RequestID.Int64, models.OfferPending)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close open offers"})
				return
			}

			message := fmt.Sprintf("Your request #%d has been fulfilled by a donor donation.", appt.RequestID.Int64)
			link := fmt.Sprintf("/blood-requests/%d", appt.RequestID.Int64)
			if err := h.AddNotification(tx, requesterID, message, link); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
				return
			}
		} else if err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch linked request"})
			return
		}
	}

	// 7. --- Notify the Donor ---
	message := fmt.Sprintf("Your appointment #%d is now %s.", appt.ID, input.Status)
	link := fmt.Sprintf("/appointments/%d", appt.ID)
	if err := h.AddNotification(tx, appt.DonorID, message, link); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	// 8. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Appointment updated",
		"status":  input.Status,
	})
}
