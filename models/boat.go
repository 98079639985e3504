package models

import "github.com/uptrace/bun"

// Boat is a competitor entered in a regatta.
type Boat struct {
	bun.BaseModel `bun:"table:boats,alias:b"`

	ID         int    `bun:"id,pk,autoincrement" json:"id"`
	RegattaID  int    `bun:"regatta_id,notnull,unique:boats_sail_number" json:"regattaID"`
	SailNumber string `bun:"sail_number,notnull,unique:boats_sail_number" json:"sailNumber"`
	Helm       string `bun:"helm" json:"helm,omitempty"`
	Club       string `bun:"club" json:"club,omitempty"`
}
