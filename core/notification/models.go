package notification

import (
	"time"

	"github.com/volatiletech/null/v8"
)

const (
	KindTripAssigned  = "trip_assigned"
	KindTripReminder  = "trip_reminder"
	KindLicenseExpiry = "license_expiry"

	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type (
	// Notification is a delivery log entry; one row per (kind, subject, driver)
	// attempt. SubjectID is the trip or driver the message is about.
	Notification struct {
		ID        string    `json:"id"`
		Kind      string    `json:"kind"`
		DriverID  string    `json:"driver_id"`
		SubjectID string    `json:"subject_id"`
		Body      string    `json:"body"`
		Status    string    `json:"status"`
		Error     string    `json:"error,omitempty"`
		SentAt    null.Time `json:"sent_at,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	QueryFilter struct {
		Kind      string
		DriverID  string
		SubjectID string
		Status    string
		Since     time.Time
	}
)
