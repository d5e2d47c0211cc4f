// Package domain holds the value types parsed at trust boundaries: ServiceM8
// identifiers and translation preferences.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "m8translate/pkg/domain-errors"
)

const canonicalUUIDLength = 36

// CompanyUUID identifies a ServiceM8 account.
// Invariant: canonical lowercase 8-4-4-4-12 hex form.
type CompanyUUID string

// JobUUID identifies the ServiceM8 job the add-on was opened from.
type JobUUID string

// ParseCompanyUUID validates external input.
//
// Errors: CodeInvalidInput when the value is empty or not a canonical UUID.
func ParseCompanyUUID(s string) (CompanyUUID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "company_uuid is required")
	}
	canonical, ok := canonicalUUID(s)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Invalid company UUID format")
	}
	return CompanyUUID(canonical), nil
}

// ParseJobUUID validates an optional job UUID. Empty input yields an empty
// JobUUID.
func ParseJobUUID(s string) (JobUUID, error) {
	if s == "" {
		return "", nil
	}
	canonical, ok := canonicalUUID(s)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "Invalid job UUID format")
	}
	return JobUUID(canonical), nil
}

func (c CompanyUUID) String() string { return string(c) }

func (j JobUUID) String() string { return string(j) }

// uuid.Parse also accepts braced, urn and 32-digit forms; only the hyphenated
// form is valid here.
func canonicalUUID(s string) (string, bool) {
	if len(s) != canonicalUUIDLength {
		return "", false
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	canonical := parsed.String()
	if canonical != strings.ToLower(s) {
		return "", false
	}
	return canonical, true
}
