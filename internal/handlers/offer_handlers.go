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
// --- Marketplace & Offer Handlers ---
//

// GetOpenRequests is the handler for GET /v1/bank/marketplace/blood-requests
// It lists Pending requests from OTHER organizations that are open to
// blood bank fulfilment.
func (h *Handlers) GetOpenRequests(c *gin.Context) {
	// 1. --- Get Bank ID ---
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)

	// 2. --- Query Open Requests ---
	query := `
		SELECT br.id, br.reference, br.requester_id, br.type, br.blood_group, br.genotype,
		       br.units_needed, br.min_units_bank_can_send, br.needed_by, br.urgency,
		       br.request_source, br.status, br.rejection_reason, br.created_at, br.updated_at,
		       COALESCE(u.facility_name, u.full_name) AS requester_name
		FROM blood_requests br
		JOIN users u ON br.requester_id = u.id
		WHERE br.status = ?
		  AND br.requester_id != ?
		  AND br.request_source IN (?, ?)
		ORDER BY FIELD(br.urgency, 'Critical', 'Urgent', 'Routine'), br.needed_by ASC`

	rows, err := h.DB.Query(query, models.RequestPending, bankID,
		models.SourceBloodBanks, models.SourceBoth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch open requests"})
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows ---
	requests := []models.BloodRequest{}
	for rows.Next() {
		var req models.BloodRequest
		if err := rows.Scan(
			&req.ID, &req.Reference, &req.RequesterID, &req.Type, &req.BloodGroup, &req.Genotype,
			&req.UnitsNeeded, &req.MinUnitsBankCanSend, &req.NeededBy, &req.Urgency,
			&req.RequestSource, &req.Status, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
			&req.RequesterName,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan request data"})
			return
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read request data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// SubmitOfferInput defines the JSON for bidding on an open request.
// product_fee is derived from units * pricePerUnit; shipping_fee comes
// from the assigned rider's vehicle rate. Neither is client-settable.
type SubmitOfferInput struct {
	Units        int     `json:"units" binding:"required,gt=0"`
	PricePerUnit float64 `json:"pricePerUnit" binding:"required,gte=0"`
	CardCharge   float64 `json:"cardCharge,omitempty" binding:"gte=0"`
	RiderID      int64   `json:"riderId,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// SubmitOffer is the handler for POST /v1/bank/marketplace/blood-requests/:id/offers
func (h *Handlers) SubmitOffer(c *gin.Context) {
	// 1. --- Get IDs & Bind Input ---
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)
	requestID := c.Param("id")

	var input SubmitOfferInput
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

	// 3. --- Lock Request & Verify It Is Open ---
	var req models.BloodRequest
	query := `
		SELECT id, requester_id, units_needed, min_units_bank_can_send, request_source, status
		FROM blood_requests WHERE id = ? FOR UPDATE`
	err = tx.QueryRow(query, requestID).Scan(
		&req.ID, &req.RequesterID, &req.UnitsNeeded, &req.MinUnitsBankCanSend,
		&req.RequestSource, &req.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	if req.RequesterID == bankID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot bid on your own request"})
		return
	}
	if !req.RequestSource.AcceptsBankOffers() {
		c.JSON(http.StatusForbidden, gin.H{"error": "This request is not open to blood bank offers"})
		return
	}
	if req.Status != models.RequestPending {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Offers can only be submitted while the request is Pending (current status: %s)", req.Status),
			"code":  CodeAlreadyTerminal,
		})
		return
	}

	// 4. --- Validate Units Against the Request's Bounds ---
	if err := models.ValidateOfferUnits(input.Units, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 5. --- Resolve Rider & Shipping Fee ---
	shippingFee := 0.0
	var riderID interface{}
	if input.RiderID > 0 {
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

		shippingFee = h.getSettingFloat(tx, rider.ShippingRateKey(), h.Cfg.DefaultShippingRate)
		riderID = rider.ID
	}

	// 6. --- Compute Fees & Insert Offer ---
	productFee := float64(input.Units) * input.PricePerUnit
	totalAmount := models.ComputeTotal(productFee, shippingFee, input.CardCharge)

	now := time.Now()
	insert := `
		INSERT INTO offers
		(request_id, organization_id, units, product_fee, shipping_fee, card_charge,
		 total_amount, rider_id, notes, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.Exec(insert,
		req.ID, bankID, input.Units, productFee, shippingFee, input.CardCharge,
		totalAmount, riderID, nullIfEmpty(input.Notes), models.OfferPending, now, now,
	)
	if err != nil {
		// The UNIQUE (request_id, organization_id) key is the real guard
		// against duplicate bids; the client-side check is a convenience.
		if isDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Your organization has already submitted an offer for this request",
				"code":  CodeDuplicateOffer,
			})
			return
		}
		h.Log.Error("failed to insert offer", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit offer"})
		return
	}

	offerID, _ := result.LastInsertId()

	// 7. --- Notify the Issuer ---
	message := fmt.Sprintf("A new offer of %.2f has been submitted for your request #%d.", totalAmount, req.ID)
	link := fmt.Sprintf("/blood-requests/%d", req.ID)
	if err := h.AddNotification(tx, req.RequesterID, message, link); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	// 8. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Offer submitted successfully",
		"offerId":     offerID,
		"totalAmount": totalAmount,
	})
}

// CheckOffer is the handler for GET /v1/bank/marketplace/blood-requests/:id/check-offer
// A bank uses this to detect whether it has already bid on a request.
func (h *Handlers) CheckOffer(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	bankID := userID_raw.(int64)
	requestID := c.Param("id")

	var offer models.Offer
	query := `
		SELECT id, request_id, organization_id, units, product_fee, shipping_fee,
		       card_charge, total_amount, rider_id, notes, status, created_at, updated_at
		FROM offers WHERE request_id = ? AND organization_id = ?`

	err := h.DB.QueryRow(query, requestID, bankID).Scan(
		&offer.ID, &offer.RequestID, &offer.OrganizationID, &offer.Units,
		&offer.ProductFee, &offer.ShippingFee, &offer.CardCharge, &offer.TotalAmount,
		&offer.RiderID, &offer.Notes, &offer.Status, &offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusOK, gin.H{"hasOffer": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check offer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasOffer": true,
		"offer":    offer,
	})
}

// GetRequestOffers is the handler for GET /v1/facility/blood-requests/:id/offers
// The issuer enumerates all bids in server order; no ranking is applied.
func (h *Handlers) GetRequestOffers(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)
	requestID := c.Param("id")

	// 2. --- Verify Ownership ---
	var ownerID int64
	err := h.DB.QueryRow("SELECT requester_id FROM blood_requests WHERE id = ?", requestID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}
	if ownerID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the issuer can view offers for this request"})
		return
	}

	// 3. --- Query Offers with Supplier & Rider Context ---
	query := `
		SELECT o.id, o.request_id, o.organization_id, o.units, o.product_fee, o.shipping_fee,
		       o.card_charge, o.total_amount, o.rider_id, o.notes, o.status, o.created_at, o.updated_at,
		       COALESCE(u.facility_name, u.full_name) AS organization_name,
		       COALESCE(r.full_name, '') AS rider_name,
		       COALESCE(r.vehicle_type, '') AS rider_vehicle
		FROM offers o
		JOIN users u ON o.organization_id = u.id
		LEFT JOIN riders r ON o.rider_id = r.id
		WHERE o.request_id = ?
		ORDER BY o.created_at ASC`

	rows, err := h.DB.Query(query, requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(
			&o.ID, &o.RequestID, &o.OrganizationID, &o.Units, &o.ProductFee, &o.ShippingFee,
			&o.CardCharge, &o.TotalAmount, &o.RiderID, &o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&o.OrganizationName, &o.RiderName, &o.RiderVehicle,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan offer"})
			return
		}
		offers = append(offers, o)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read offer data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// AcceptOffer is the handler for POST /v1/facility/offers/:id/accept
// Acceptance is a single transaction: the chosen offer becomes Accepted,
// every sibling Pending offer becomes Rejected, and the parent request
// leaves Pending. There is no window where two offers are both accepted.
func (h *Handlers) AcceptOffer(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	requesterID := userID_raw.(int64)
	offerID := c.Param("id")

	// 2. --- Begin Transaction ---
	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Lock Offer ---
	var offer models.Offer
	query := "SELECT id, request_id, organization_id, status FROM offers WHERE id = ? FOR UPDATE"
	err = tx.QueryRow(query, offerID).Scan(&offer.ID, &offer.RequestID, &offer.OrganizationID, &offer.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer"})
		return
	}

	// 4. --- Lock Parent Request & Verify Authority ---
	var reqStatus models.RequestStatus
	var ownerID int64
	err = tx.QueryRow("SELECT requester_id, status FROM blood_requests WHERE id = ? FOR UPDATE", offer.RequestID).
		Scan(&ownerID, &reqStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parent request"})
		return
	}

	if ownerID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the issuer can accept an offer"})
		return
	}

	// A second accept on the same request (or an accept after cancel) is a
	// hard ALREADY_TERMINAL error, never a silent no-op.
	if reqStatus != models.RequestPending {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Request has already left Pending (current status: %s)", reqStatus),
			"code":  CodeAlreadyTerminal,
		})
		return
	}
	if offer.Status != models.OfferPending {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Offer is no longer Pending (current status: %s)", offer.Status),
			"code":  CodeAlreadyTerminal,
		})
		return
	}

	// 5. --- Accept the Winner ---
	now := time.Now()
	_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE id = ?",
		models.OfferAccepted, now, offer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept offer"})
		return
	}

	// 6. --- Reject Every Sibling ---
	rows, err := tx.Query("SELECT id, organization_id FROM offers WHERE request_id = ? AND id != ? AND status = ? FOR UPDATE",
		offer.RequestID, offer.ID, models.OfferPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sibling offers"})
		return
	}

	type sibling struct {
		ID             int64
		OrganizationID int64
	}
	var siblings []sibling
	for rows.Next() {
		var s sibling
		if err := rows.Scan(&s.ID, &s.OrganizationID); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan sibling offer"})
			return
		}
		siblings = append(siblings, s)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sibling offers"})
		return
	}

	if len(siblings) > 0 {
		_, err = tx.Exec("UPDATE offers SET status = ?, updated_at = ? WHERE request_id = ? AND id != ? AND status = ?",
			models.OfferRejected, now, offer.RequestID, offer.ID, models.OfferPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject sibling offers"})
			return
		}
	}

	// 7. --- Transition the Request ---
	_, err = tx.Exec("UPDATE blood_requests SET status = ?, updated_at = ? WHERE id = ?",
		models.RequestAccepted, now, offer.RequestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request status"})
		return
	}

	// 8. --- Notifications ---
	winnerMsg := fmt.Sprintf("Your offer for request #%d has been accepted. Please dispatch the delivery.", offer.RequestID)
	requestLink := fmt.Sprintf("/blood-requests/%d", offer.RequestID)
	if err := h.AddNotification(tx, offer.OrganizationID, winnerMsg, requestLink); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}
	for _, s := range siblings {
		loserMsg := fmt.Sprintf("Your offer for request #%d was not selected.", offer.RequestID)
		if err := h.AddNotification(tx, s.OrganizationID, loserMsg, requestLink); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
			return
		}
	}

	// 9. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Offer accepted",
		"offerStatus":    models.OfferAccepted,
		"requestStatus":  models.RequestAccepted,
		"rejectedOffers": len(siblings),
	})
}
