package ics

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
)

// CompatReport is the outcome of the compatibility check against a
// generated calendar document.
type CompatReport struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// CheckCompatibility re-parses generated calendar text and verifies the
// markers that common calendar applications require: the VCALENDAR
// wrapper and the 2.0 version line. A missing PRODID is reported as a
// warning only.
func CheckCompatibility(content string) CompatReport {
	report := CompatReport{IsValid: true, Errors: []string{}, Warnings: []string{}}

	if _, err := ical.ParseCalendar(strings.NewReader(content)); err != nil {
		report.IsValid = false
		report.Errors = append(report.Errors, fmt.Sprintf("parse error: %v", err))
		return report
	}

	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		report.IsValid = false
		report.Errors = append(report.Errors, "missing VCALENDAR component")
	}
	if !strings.Contains(content, "VERSION:2.0") {
		report.IsValid = false
		report.Errors = append(report.Errors, "missing or incorrect VERSION")
	}
	if !strings.Contains(content, "PRODID") {
		report.Warnings = append(report.Warnings, "missing PRODID (recommended)")
	}

	return report
}
