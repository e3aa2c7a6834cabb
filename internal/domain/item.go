package domain

import "time"

// Item is the persisted form of a saved card placed on the canvas.
type Item struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`   // preview image URL or data URI
	Favicon   string    `json:"favicon"` // favicon URL or data URI
	GroupID   string    `json:"groupId"` // "inbox", "hidden" or a user group id
	Index     int       `json:"index"`   // position in the owning group's arrangement
	CreatedAt time.Time `json:"createdAt"`
}
