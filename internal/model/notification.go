package model

import "time"

// NotificationKind classifies user-facing messages.
type NotificationKind int

const (
	NotifyValidationBlocked NotificationKind = iota
	NotifySubmissionPending
	NotifySubmissionSucceeded
	NotifySubmissionFailed
	NotifyCatalogUnavailable
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyValidationBlocked:
		return "validation"
	case NotifySubmissionPending:
		return "pending"
	case NotifySubmissionSucceeded:
		return "succeeded"
	case NotifySubmissionFailed:
		return "failed"
	case NotifyCatalogUnavailable:
		return "catalog"
	default:
		return "unknown"
	}
}

// IsError reports whether the notification describes a failure the user
// should notice.
func (k NotificationKind) IsError() bool {
	return k == NotifyValidationBlocked || k == NotifySubmissionFailed || k == NotifyCatalogUnavailable
}

// Notification is a short human-readable message for the user.
type Notification struct {
	Kind    NotificationKind
	Message string
	At      time.Time
}
