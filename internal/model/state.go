package model

import "strings"

// Selection is the user's current material/region choice. Empty strings mean
// "not chosen".
type Selection struct {
	Material string `json:"material"`
	Region   string `json:"region"`
}

// Complete reports whether both fields are chosen.
func (s Selection) Complete() bool {
	return s.Material != "" && s.Region != ""
}

// Missing returns the names of the fields that are still empty.
func (s Selection) Missing() []string {
	var missing []string
	if s.Material == "" {
		missing = append(missing, "material")
	}
	if s.Region == "" {
		missing = append(missing, "region")
	}
	return missing
}

// RequestStatus tracks the lifecycle of the prediction request.
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

// ViewMode selects how a prediction series is presented.
type ViewMode int

const (
	ViewTable ViewMode = iota
	ViewChart
)

func (m ViewMode) String() string {
	if m == ViewChart {
		return "Chart"
	}
	return "Table"
}

// ParseViewMode converts a preference string to a ViewMode. Unrecognized
// values fall back to ViewTable and report false.
func ParseViewMode(s string) (ViewMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chart":
		return ViewChart, true
	case "table":
		return ViewTable, true
	default:
		return ViewTable, false
	}
}
