package shared

import (
	"regexp"
	"strings"
)

// Page size bounds applied by every list query.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// StudentID identifies a student. The value comes from the identity
// collaborator and is trusted as-is; the core performs no authentication.
type StudentID string

func (s StudentID) IsValid() bool { return strings.TrimSpace(string(s)) != "" }
func (s StudentID) String() string { return string(s) }

// InstitutionID identifies an institution.
type InstitutionID string

func (i InstitutionID) IsValid() bool { return strings.TrimSpace(string(i)) != "" }
func (i InstitutionID) String() string { return string(i) }

// CourseID identifies a course offering.
type CourseID string

func (c CourseID) IsValid() bool { return strings.TrimSpace(string(c)) != "" }
func (c CourseID) String() string { return string(c) }

// ApplicationID identifies an application. Applications are the only
// aggregate created by this service, so their IDs are UUIDs it mints.
type ApplicationID string

func (a ApplicationID) IsValid() bool { return uuidRegex.MatchString(string(a)) }
func (a ApplicationID) String() string { return string(a) }
