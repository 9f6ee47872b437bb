package domain

import "time"

// Post is a piece of content owned by a single user.
type Post struct {
	ID      string
	Content string
	UserID  string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
