package models

import "time"

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#B29632"

// Project groups root tasks and their trees.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels tasks. Names are unique per user.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
