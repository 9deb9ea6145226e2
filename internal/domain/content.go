package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind distinguishes the follow-up email from social posts.
type ContentKind string

const (
	ContentKindEmail      ContentKind = "email"
	ContentKindSocialPost ContentKind = "social_post"
)

func (k ContentKind) String() string { return string(k) }

func (k ContentKind) IsValid() bool {
	switch k {
	case ContentKindEmail, ContentKindSocialPost:
		return true
	}
	return false
}

// ContentStatus is the publishing state of one generated artifact.
type ContentStatus string

const (
	ContentStatusDraft  ContentStatus = "draft"
	ContentStatusPosted ContentStatus = "posted"
	ContentStatusFailed ContentStatus = "failed"
)

func (s ContentStatus) String() string { return string(s) }

func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusPosted, ContentStatusFailed:
		return true
	}
	return false
}

// GeneratedContent is one AI-generated artifact for one meeting. Rows are
// append-only: regeneration adds a new row, and only the publisher ever
// changes Status, ExternalPostID and LastError.
type GeneratedContent struct {
	ID             uuid.UUID
	MeetingEventID uuid.UUID
	Kind           ContentKind
	Platform       *SocialPlatform
	AutomationID   *uuid.UUID
	Body           string
	Status         ContentStatus
	ExternalPostID string
	LastError      string
	CreatedAt      time.Time
	PostedAt       *time.Time
}

// Publishable reports whether a publish attempt may proceed. Drafts and
// previously failed artifacts may be (re)published; posted ones never.
func (c *GeneratedContent) Publishable() bool {
	return c.Status == ContentStatusDraft || c.Status == ContentStatusFailed
}
