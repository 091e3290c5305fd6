package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Role-Based Middleware ---
//
// These middleware functions are designed to be USED *AFTER*
// the main AuthMiddleware(). They read the 'userID' from the context,
// query the DB for that user's role, and then enforce role permissions.
//

// queryUserRole is a helper to get the user's role from the DB.
func queryUserRole(db *sql.DB, userID int64) (models.Role, error) {
	var role models.Role
	query := "SELECT role FROM users WHERE id = ?"
	err := db.QueryRow(query, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// requireRoles builds a middleware that admits only the listed roles.
// Administrators always pass.
func requireRoles(db *sql.DB, message string, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userID_raw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}
		userID := userID_raw.(int64)

		// 2. Query DB for user's role
		role, err := queryUserRole(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		// 3. Check permission
		allowed := role == models.RoleAdmin
		for _, r := range roles {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": message})
			c.Abort()
			return
		}

		// 4. Success! Add role to context and proceed.
		c.Set("userRole", role)
		c.Next()
	}
}

// FacilityMiddleware admits hospitals and blood banks (request issuers).
func FacilityMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRoles(db, "Access denied: Hospital or Blood Bank role required",
		models.RoleHospital, models.RoleBloodBank)
}

// BloodBankMiddleware admits blood banks only (marketplace suppliers).
func BloodBankMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRoles(db, "Access denied: Blood Bank role required", models.RoleBloodBank)
}

// DonorMiddleware admits donors only.
func DonorMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRoles(db, "Access denied: Donor role required", models.RoleDonor)
}

// RegulatorMiddleware admits the regulatory body.
func RegulatorMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRoles(db, "Access denied: Regulator role required", models.RoleRegulator)
}

// AdminMiddleware admits administrators only.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRoles(db, "Access denied: Administrator role required")
}
