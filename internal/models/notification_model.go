package models

import "time"

type Notification struct {
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	PostID      int64     `db:"post_id" json:"post_id"`
	Message     string    `db:"message" json:"message"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
