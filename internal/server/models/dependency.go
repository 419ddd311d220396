package models

import "time"

// DependencyStatus compares a tracked module's pinned version with the
// newest one published.
type DependencyStatus struct {
	Module          string `json:"module"`
	Type            string `json:"type"`
	Current         string `json:"current"`
	Latest          string `json:"latest,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	Error           string `json:"error,omitempty"`
}

// DependencyReport is the result of one dependency check.
type DependencyReport struct {
	CheckedAt    time.Time          `json:"checkedAt"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
