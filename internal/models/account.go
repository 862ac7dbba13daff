package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Email     string
	Name      string
	Role      Role
	CompanyID *uuid.UUID // nil for clients
}

type Company struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Name      string
}
