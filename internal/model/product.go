package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item. Only the fields the order engine
// needs are modelled; catalog management lives elsewhere.
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"` // minor currency units
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
