package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/auth"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Registration & Login ---
//

// RegisterDonorInput holds the donor sign-up payload. Kept separate from
// models.User so callers cannot set id/role/status themselves.
type RegisterDonorInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	BloodGroup  string `json:"bloodGroup,omitempty"`
	Genotype    string `json:"genotype,omitempty"`
}

// RegisterDonor is the handler for POST /v1/register/donor
func (h *Handlers) RegisterDonor(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterDonorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.BloodGroup != "" && !models.ValidBloodGroup(input.BloodGroup) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
		return
	}
	if input.Genotype != "" && !models.ValidGenotype(input.Genotype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid genotype"})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Save to Database ---
	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number, blood_group, genotype, created_at, updated_at, version)
		VALUES (?, 'active', ?, ?, ?, ?, ?, ?, ?, ?, 1)`

	result, err := h.DB.Exec(query,
		models.RoleDonor, input.Email, password.Hash, input.FullName, input.PhoneNumber,
		nullIfEmpty(input.BloodGroup), nullIfEmpty(input.Genotype), now, now,
	)
	if err != nil {
		if isDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("failed to insert donor", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	userID, _ := result.LastInsertId()

	// 4. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "Donor registered successfully.",
		"userId":  userID,
	})
}

// RegisterOrganizationInput holds the hospital / blood bank sign-up payload.
type RegisterOrganizationInput struct {
	Role          models.Role `json:"role" binding:"required,oneof=hospital blood_bank"`
	FacilityName  string      `json:"facilityName" binding:"required"`
	LicenseNumber string      `json:"licenseNumber" binding:"required"`
	FullName      string      `json:"fullName" binding:"required"`
	Email         string      `json:"email" binding:"required,email"`
	Password      string      `json:"password" binding:"required,min=8"`
	PhoneNumber   string      `json:"phoneNumber" binding:"required"`
	AddressLine   string      `json:"addressLine,omitempty"`
	City          string      `json:"city,omitempty"`
	State         string      `json:"state,omitempty"`
}

// RegisterOrganization is the handler for POST /v1/register/organization
// New organizations start 'pending' until an administrator activates them.
func (h *Handlers) RegisterOrganization(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterOrganizationInput
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

	// 3. --- Save to Database ---
	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number,
		 facility_name, license_number, address_line, city, state, created_at, updated_at, version)
		VALUES (?, 'pending', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`

	result, err := h.DB.Exec(query,
		input.Role, input.Email, password.Hash, input.FullName, input.PhoneNumber,
		input.FacilityName, input.LicenseNumber,
		nullIfEmpty(input.AddressLine), nullIfEmpty(input.City), nullIfEmpty(input.State),
		now, now,
	)
	if err != nil {
		if isDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("failed to insert organization", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	userID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Organization registered successfully, pending approval.",
		"userId":  userID,
	})
}

// LoginInput defines the JSON for the login endpoint
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Look Up User ---
	var userID int64
	var role models.Role
	var status, passwordHash string
	query := "SELECT id, role, status, password_hash FROM users WHERE email = ?"
	err := h.DB.QueryRow(query, input.Email).Scan(&userID, &role, &status, &passwordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: passwordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 4. --- Check Account Status ---
	if status == "suspended" {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been suspended"})
		return
	}
	if status == "pending" {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account is awaiting approval"})
		return
	}

	// 5. --- Issue Token ---
	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  role,
	})
}

// GetMyProfile is the handler for GET /v1/profile/me
func (h *Handlers) GetMyProfile(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var user models.User
	query := `
		SELECT id, role, status, email, full_name, phone_number,
		       facility_name, license_number, address_line, city, state,
		       blood_group, genotype, created_at, updated_at
		FROM users WHERE id = ?`

	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.FullName, &user.PhoneNumber,
		&user.FacilityName, &user.LicenseNumber, &user.AddressLine, &user.City, &user.State,
		&user.BloodGroup, &user.Genotype, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

//
// --- Small Helpers ---
//

// nullIfEmpty converts "" to a SQL NULL so optional columns stay clean.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
