package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Admin Handlers ---
//

// CreateRegulatorInput defines the JSON for provisioning a regulator account.
type CreateRegulatorInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// CreateRegulator is the handler for POST /v1/admin/create-regulator
// Regulator accounts are provisioned by administrators, never self-registered.
func (h *Handlers) CreateRegulator(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CreateRegulatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Save to Database (active immediately) ---
	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number, created_at, updated_at, version)
		VALUES (?, 'active', ?, ?, ?, ?, ?, ?, 1)`

	result, err := h.DB.Exec(query,
		models.RoleRegulator, input.Email, password.Hash, input.FullName, input.PhoneNumber, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("failed to insert regulator", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create regulator"})
		return
	}

	userID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Regulator account created",
		"userId":  userID,
	})
}

// ProcessOrganizationInput defines the JSON for approving or suspending
// an organization account.
type ProcessOrganizationInput struct {
	Action string `json:"action" binding:"required,oneof=approve suspend"`
}

// ProcessOrganization is the handler for PATCH /v1/admin/organizations/:id
func (h *Handlers) ProcessOrganization(c *gin.Context) {
	orgID := c.Param("id")

	var input ProcessOrganizationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStatus := "active"
	if input.Action == "suspend" {
		newStatus = "suspended"
	}

	result, err := h.DB.Exec(
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ? AND role IN (?, ?)",
		newStatus, time.Now(), orgID, models.RoleHospital, models.RoleBloodBank)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization " + newStatus,
		"status":  newStatus,
	})
}
