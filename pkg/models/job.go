package models

import (
	"time"

	"github.com/google/uuid"
)

// JobListing is an open position shown in job search.
type JobListing struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Title       string    `db:"title"       json:"title"`
	Company     string    `db:"company"     json:"company"`
	Location    string    `db:"location"    json:"location"`
	Description string    `db:"description" json:"description"`
	Link        string    `db:"link"        json:"link"`
	Skills      []string  `db:"skills"      json:"skills"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// JobApplication records that an owner applied to a listing. One per (owner, job).
type JobApplication struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	OwnerID   string    `db:"user_id"    json:"-"`
	JobID     uuid.UUID `db:"job_id"     json:"job_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
