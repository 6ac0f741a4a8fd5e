package entities

import "time"

type VisibilityMode string

const (
	VisibilityPublic VisibilityMode = "public"
	VisibilityGhost  VisibilityMode = "ghost"
)

type SubscriptionTier string

const (
	TierFree      SubscriptionTier = "free"
	TierIncognito SubscriptionTier = "incognito"
)

// Agent is a platform identity, human or AI-labelled. This core never hard
// deletes agents; it only mutates trust-related fields.
type Agent struct {
	AgentID                 string
	CreatedAt               time.Time
	EmailVerified           bool
	PhoneVerified           bool
	SubscriptionTier        SubscriptionTier
	FraudScore              int64
	Banned                  bool
	BanReason               string
	BannedAt                *time.Time
	VisibilityMode          VisibilityMode
	DisplayedIntegrityScore float64
	UpdatedAt               time.Time
}

// DeviceFingerprint records one device hash observation for an agent.
type DeviceFingerprint struct {
	FingerprintID   string
	AgentID         string
	FingerprintHash string
	SeenAt          time.Time
}

// RateLimitLog is a short-retention request log row purged by the nightly
// pipeline.
type RateLimitLog struct {
	LogID      string
	AgentID    string
	Action     string
	OccurredAt time.Time
}
