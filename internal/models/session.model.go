package models

// TestSession correlates a visitor with one in-flight test run. It bridges
// the gap between the page view that starts a test and the later,
// separately dispatched submission request. At most one active session
// exists per visitor identity; a new session replaces the prior one.
type TestSession struct {
	BaseUUIDModel
	VisitorIdentity string `gorm:"type:varchar(64);not null;index" json:"visitorIdentity"`
	TestID          string `gorm:"type:varchar(64);not null;index" json:"testId"`
	TargetKey       string `gorm:"type:varchar(255)"               json:"targetKey"`
}
