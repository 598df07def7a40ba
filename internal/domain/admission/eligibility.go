// Package admission contains cross-aggregate admission rules: the apply
// eligibility bar and the notification wording for lifecycle transitions.
package admission

import (
	"fmt"

	"github.com/campus-hub/admissions-hub/internal/domain/application"
	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/document"
)

// IsEligible decides whether a student may apply to a course, given the
// student's document set. The bar is minimal: at least one transcript-class
// credential must be on file. Course-specific textual requirements are
// advisory only and never enforced here.
//
// Pure, deterministic, total: no side effects, never fails.
func IsEligible(docs []*document.Document, c *course.Course) bool {
	for _, d := range docs {
		if d.Type.IsTranscriptClass() {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// NOTIFICATION WORDING
// ═══════════════════════════════════════════════════════════════════════════

// TransitionMessage renders the student-facing notification text for a
// status transition. Every student-visible transition gets exactly one
// message; wording is keyed by the target status.
func TransitionMessage(next application.Status, courseName string) string {
	switch next {
	case application.StatusAdmitted:
		return fmt.Sprintf("Congratulations! You have been admitted to %s. If you hold multiple offers you will need to choose one.", courseName)
	case application.StatusRejected:
		return fmt.Sprintf("Your application to %s was not successful this time.", courseName)
	case application.StatusAccepted:
		return fmt.Sprintf("You are enrolled in %s. Welcome aboard!", courseName)
	case application.StatusDeclined:
		return fmt.Sprintf("Your admission offer for %s has been declined.", courseName)
	}
	return ""
}

// AcceptedMessage renders the notification for the offer kept during
// reconciliation.
func AcceptedMessage(courseName string) string {
	return TransitionMessage(application.StatusAccepted, courseName)
}

// DeclinedMessage renders the notification for a sibling offer released
// during reconciliation.
func DeclinedMessage(courseName string) string {
	return fmt.Sprintf("Your admission offer for %s was released because you accepted another offer.", courseName)
}
