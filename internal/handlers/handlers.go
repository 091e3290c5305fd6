package handlers

import (
	"database/sql"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/config"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/logger"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB  *sql.DB
	Cfg config.Config
	Log logger.ILogger
}

// Error codes surfaced in JSON bodies so clients can branch on the kind of
// failure instead of parsing messages.
const (
	CodeAlreadyTerminal = "ALREADY_TERMINAL"
	CodeDuplicateOffer  = "DUPLICATE_OFFER"
)
