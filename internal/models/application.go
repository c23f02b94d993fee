package models

import "time"

// ApplicationStatus is the stage of a job application
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewing   ApplicationStatus = "reviewing"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationInterviewed ApplicationStatus = "interviewed"
	ApplicationOffered     ApplicationStatus = "offered"
	ApplicationHired       ApplicationStatus = "hired"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// StatusHistoryEntry records one status change
type StatusHistoryEntry struct {
	Status    ApplicationStatus `json:"status"`
	ChangedBy string            `json:"changedBy"`
	ChangedAt time.Time         `json:"changedAt"`
	Note      string            `json:"note,omitempty"`
}

// Application is a candidate's application to a posting
type Application struct {
	ID             string               `json:"id"`
	CareerID       string               `json:"careerId"`
	CareerTitle    string               `json:"careerTitle"`
	CareerSlug     string               `json:"careerSlug"`
	Department     string               `json:"department"`
	FirstName      string               `json:"firstName"`
	LastName       string               `json:"lastName"`
	FullName       string               `json:"fullName"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	ResumeURL      string               `json:"resumeUrl"`
	ResumeFileName string               `json:"resumeFileName"`
	ResumeFileSize int64                `json:"resumeFileSize"`
	CoverLetter    string               `json:"coverLetter,omitempty"`
	HowDidYouHear  string               `json:"howDidYouHear"`
	Status         ApplicationStatus    `json:"status"`
	StatusHistory  []StatusHistoryEntry `json:"statusHistory"`
	ReviewedBy     string               `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time           `json:"reviewedAt,omitempty"`
	AdminNotes     string               `json:"adminNotes,omitempty"`
	Rating         *int                 `json:"rating,omitempty"`
	AppliedAt      time.Time            `json:"appliedAt"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ApplicationFilters are the application list query parameters
type ApplicationFilters struct {
	ListQuery
	CareerID   string            `json:"careerId,omitempty"`
	Status     ApplicationStatus `json:"status,omitempty"`
	Department string            `json:"department,omitempty"`
	DateFrom   string            `json:"dateFrom,omitempty"`
	DateTo     string            `json:"dateTo,omitempty"`
}

func (f ApplicationFilters) Params() map[string]any {
	p := f.ListQuery.Params()
	with(p, "careerId", f.CareerID)
	with(p, "status", string(f.Status))
	with(p, "department", f.Department)
	with(p, "dateFrom", f.DateFrom)
	return with(p, "dateTo", f.DateTo)
}

// ApplicationStatusUpdate is the body of the application status endpoint
type ApplicationStatusUpdate struct {
	Status     ApplicationStatus `json:"status"`
	Note       string            `json:"note,omitempty"`
	AdminNotes string            `json:"adminNotes,omitempty"`
	Rating     *int              `json:"rating,omitempty"`
}

// ApplicationStats are the application counters
type ApplicationStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Reviewing   int `json:"reviewing"`
	Shortlisted int `json:"shortlisted"`
	Rejected    int `json:"rejected"`
	Hired       int `json:"hired"`
}
