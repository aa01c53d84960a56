package ui

import (
	"fmt"
	"time"

	"github.com/piwi3910/jajaero/internal/model"
)

const defaultMaxDepth = 50

// repeatWindow is how long an identical notification is kept out of a
// second dialog.
const repeatWindow = 2 * time.Second

// ActivityLog keeps the most recent notifications shown to the user.
type ActivityLog struct {
	entries  []model.Notification
	maxDepth int
}

// NewActivityLog creates an ActivityLog with the default max depth of 50.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{
		maxDepth: defaultMaxDepth,
	}
}

// Push records a notification, dropping the oldest entry when full.
func (l *ActivityLog) Push(n model.Notification) {
	l.entries = append(l.entries, n)
	if len(l.entries) > l.maxDepth {
		l.entries = l.entries[len(l.entries)-l.maxDepth:]
	}
}

// Entries returns a copy of the log, newest first.
func (l *ActivityLog) Entries() []model.Notification {
	out := make([]model.Notification, len(l.entries))
	for i, n := range l.entries {
		out[len(l.entries)-1-i] = n
	}
	return out
}

// Latest returns the newest entry and true, or false if the log is empty.
func (l *ActivityLog) Latest() (model.Notification, bool) {
	if len(l.entries) == 0 {
		return model.Notification{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of recorded entries.
func (l *ActivityLog) Len() int {
	return len(l.entries)
}

// Clear removes all entries.
func (l *ActivityLog) Clear() {
	l.entries = nil
}

// needsDialog reports whether n should interrupt the user with a dialog: only
// error kinds do, and not when the newest entry in log is the same message
// from less than repeatWindow ago.
func needsDialog(log *ActivityLog, n model.Notification) bool {
	if !n.Kind.IsError() {
		return false
	}
	last, ok := log.Latest()
	if !ok {
		return true
	}
	return last.Kind != n.Kind || last.Message != n.Message || n.At.Sub(last.At) >= repeatWindow
}

// FormatEntry renders a log line such as "14:03:12 [failed] Prediction failed".
func FormatEntry(n model.Notification) string {
	return fmt.Sprintf("%s [%s] %s", n.At.Format("15:04:05"), n.Kind, n.Message)
}
