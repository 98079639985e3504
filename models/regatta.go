package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Regatta status values.
const (
	StatusPreparation = "preparation"
	StatusActive      = "active"
	StatusClosed      = "closed"
)

// Regatta is a series of races sailed by one fleet.
type Regatta struct {
	bun.BaseModel `bun:"table:regattas,alias:rg"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Date         string    `bun:"date" json:"date,omitempty"`
	Organizer    string    `bun:"organizer" json:"organizer,omitempty"`
	BoatClass    string    `bun:"boat_class" json:"boatClass,omitempty"`
	Status       string    `bun:"status,notnull,default:'preparation'" json:"status"`
	DiscardCount int       `bun:"discard_count,notnull,default:0" json:"discardCount"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
