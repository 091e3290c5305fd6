package models

import (
	"database/sql"
	"time"
)

// InventoryItem is the model for the 'inventory_items' table.
// Each row is a blood bank's stock of one product/blood-group combination.
type InventoryItem struct {
	ID             int64        `json:"id" db:"id"`
	OrganizationID int64        `json:"organizationId" db:"organization_id"`
	BloodGroup     string       `json:"bloodGroup" db:"blood_group"`
	ProductType    RequestType  `json:"productType" db:"product_type"`
	UnitsAvailable int          `json:"unitsAvailable" db:"units_available"`
	ExpiresOn      sql.NullTime `json:"expiresOn,omitempty" db:"expires_on"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}
