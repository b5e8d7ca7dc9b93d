// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the workflow state of a permit application.
type ApplicationStatus string

const (
	// ApplicationStatusDraft is a created-but-unsubmitted application.
	ApplicationStatusDraft ApplicationStatus = "DRAFT"
	// ApplicationStatusSubmitted is an application awaiting review.
	ApplicationStatusSubmitted ApplicationStatus = "SUBMITTED"
	// ApplicationStatusApproved is an application a reviewer accepted.
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	// ApplicationStatusRejected is an application a reviewer declined.
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application is a permit application filed by a user. Only the slice of the
// record the authenticated API surface needs is modeled here; review and
// permit issuance live in their own services.
type Application struct {
	ID          uuid.UUID         // The unique identifier for the application.
	Reference   string            // Human-facing reference number, e.g. "PD-2026-000123".
	ApplicantID uuid.UUID         // The user who filed the application.
	Kind        string            // Permit kind, e.g. "building", "event".
	Summary     string            // Short free-text description of the request.
	Status      ApplicationStatus // Current workflow state.
	SubmittedAt *time.Time        // When the application left DRAFT; nil for drafts.
	CreatedAt   time.Time         // Timestamp of creation.
	UpdatedAt   time.Time         // Timestamp of the last modification.
}
