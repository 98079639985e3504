package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Race is a single race of a regatta.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:rc"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	RegattaID    int       `bun:"regatta_id,notnull,unique:races_sequence" json:"regattaID"`
	Sequence     int       `bun:"sequence,notnull,unique:races_sequence" json:"sequence"`
	Name         string    `bun:"name,notnull" json:"name"`
	StartTime    string    `bun:"start_time" json:"startTime,omitempty"`
	FinishTime   string    `bun:"finish_time" json:"finishTime,omitempty"`
	WindStrength string    `bun:"wind_strength" json:"windStrength,omitempty"`
	CourseLength string    `bun:"course_length" json:"courseLength,omitempty"`
	Completed    bool      `bun:"completed,notnull,default:false" json:"completed"`
	Incomplete   bool      `bun:"incomplete,notnull,default:false" json:"incomplete"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
