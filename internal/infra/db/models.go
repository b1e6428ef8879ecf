package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OnboardingRequest struct {
	ID         uuid.UUID       `db:"id"`
	AgencyName string          `db:"agency_name"`
	OwnerEmail string          `db:"owner_email"`
	OwnerName  string          `db:"owner_name"`
	Status     string          `db:"status"`
	Metadata   json.RawMessage `db:"metadata"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}
