package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/models"
)

//
// --- Inventory Handlers (Blood Bank Stock) ---
//

// CreateInventoryItemInput defines the JSON for recording stock.
type CreateInventoryItemInput struct {
	BloodGroup     string             `json:"bloodGroup" binding:"required"`
	ProductType    models.RequestType `json:"productType,omitempty"`
	UnitsAvailable int                `json:"unitsAvailable" binding:"gte=0"`
	ExpiresOn      *time.Time         `json:"expiresOn,omitempty"`
}

// CreateInventoryItem is the handler for POST /v1/bank/inventory
func (h *Handlers) CreateInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)

	var input CreateInventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidBloodGroup(input.BloodGroup) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
		return
	}
	if input.ProductType == "" {
		input.ProductType = models.RequestTypeBlood
	}
	if !models.ValidRequestType(input.ProductType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product type"})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO inventory_items
		(organization_id, blood_group, product_type, units_available, expires_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		organizationID, input.BloodGroup, input.ProductType, input.UnitsAvailable, input.ExpiresOn, now, now)
	if err != nil {
		h.Log.Error("failed to insert inventory item", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory item"})
		return
	}

	itemID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory item created",
		"itemId":  itemID,
	})
}

// GetMyInventoryItems is the handler for GET /v1/bank/inventory
func (h *Handlers) GetMyInventoryItems(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)

	query := `
		SELECT id, organization_id, blood_group, product_type, units_available,
		       expires_on, created_at, updated_at
		FROM inventory_items
		WHERE organization_id = ?
		ORDER BY blood_group ASC, expires_on ASC`

	rows, err := h.DB.Query(query, organizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.BloodGroup, &item.ProductType,
			&item.UnitsAvailable, &item.ExpiresOn, &item.CreatedAt, &item.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inventory item"})
			return
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read inventory data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateInventoryItemInput defines the JSON for adjusting stock levels.
type UpdateInventoryItemInput struct {
	UnitsAvailable *int       `json:"unitsAvailable,omitempty"`
	ExpiresOn      *time.Time `json:"expiresOn,omitempty"`
}

// UpdateInventoryItem is the handler for PUT /v1/bank/inventory/:id
func (h *Handlers) UpdateInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)
	itemID := c.Param("id")

	var input UpdateInventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.UnitsAvailable == nil && input.ExpiresOn == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if input.UnitsAvailable != nil && *input.UnitsAvailable < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unitsAvailable cannot be negative"})
		return
	}

	query := "UPDATE inventory_items SET updated_at = ?"
	args := []interface{}{time.Now()}
	if input.UnitsAvailable != nil {
		query += ", units_available = ?"
		args = append(args, *input.UnitsAvailable)
	}
	if input.ExpiresOn != nil {
		query += ", expires_on = ?"
		args = append(args, *input.ExpiresOn)
	}
	query += " WHERE id = ? AND organization_id = ?"
	args = append(args, itemID, organizationID)

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item updated"})
}

// DeleteInventoryItem is the handler for DELETE /v1/bank/inventory/:id
func (h *Handlers) DeleteInventoryItem(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	organizationID := userID_raw.(int64)
	itemID := c.Param("id")

	result, err := h.DB.Exec(
		"DELETE FROM inventory_items WHERE id = ? AND organization_id = ?",
		itemID, organizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted"})
}
