package models

import "time"

type Post struct {
	ID              int64             `db:"id" json:"id"`
	Title           string            `db:"title" json:"title"`
	Body            string            `db:"body" json:"body"`
	TargetPlatforms []string          `db:"target_platforms" json:"target_platforms"`
	PlatformContent map[string]string `db:"platform_content" json:"platform_content"`
	MediaURLs       []string          `db:"media_urls" json:"media_urls"`
	Status          string            `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft           = "draft"
	PostStatusPendingApproval = "pending_approval"
	PostStatusApproved        = "approved"
	PostStatusScheduled       = "scheduled"
	PostStatusPublished       = "published"
	PostStatusRejected        = "rejected"
	PostStatusArchived        = "archived"
)

// Publishable reports whether the post may be picked up by the
// publishing engine. Only scheduled and approved posts qualify.
func (p *Post) Publishable() bool {
	return p.Status == PostStatusScheduled || p.Status == PostStatusApproved
}

// BodyFor returns the platform-specific override when one exists,
// otherwise the shared body.
func (p *Post) BodyFor(platform string) string {
	if override, ok := p.PlatformContent[platform]; ok && override != "" {
		return override
	}
	return p.Body
}
