package domain

import (
	"time"

	"github.com/google/uuid"
)

// SocialPlatform identifies a posting target.
type SocialPlatform string

const (
	SocialPlatformLinkedIn SocialPlatform = "linkedin"
	SocialPlatformFacebook SocialPlatform = "facebook"
)

// SocialPlatforms lists every supported posting target, in matching order.
var SocialPlatforms = []SocialPlatform{SocialPlatformLinkedIn, SocialPlatformFacebook}

func (p SocialPlatform) String() string { return string(p) }

func (p SocialPlatform) IsValid() bool {
	switch p {
	case SocialPlatformLinkedIn, SocialPlatformFacebook:
		return true
	}
	return false
}

// Automation is a user-defined, platform-scoped rule that turns a finished
// transcript into a social post. At most one active automation exists per
// (owner, platform); the rows are managed outside the pipeline and consumed
// read-only here.
type Automation struct {
	ID             uuid.UUID
	OwnerAccountID uuid.UUID
	Platform       SocialPlatform
	Name           string
	PromptTemplate string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SocialAccount holds the posting credentials for one (owner, platform) pair.
// Token acquisition and refresh happen outside the pipeline.
type SocialAccount struct {
	ID             uuid.UUID
	OwnerAccountID uuid.UUID
	Platform       SocialPlatform
	AccessToken    string
	PageID         string
	CreatedAt      time.Time
}

// AccountSettings carries the per-account pipeline knobs.
type AccountSettings struct {
	OwnerAccountID  uuid.UUID
	LeadTimeMinutes int
	UpdatedAt       time.Time
}
