package models

import "time"

// CareerStatus is the publication state of a job posting
type CareerStatus string

const (
	CareerDraft     CareerStatus = "draft"
	CareerPublished CareerStatus = "published"
	CareerClosed    CareerStatus = "closed"
)

// EmploymentType of a posting
type EmploymentType string

const (
	FullTime   EmploymentType = "Full-time"
	PartTime   EmploymentType = "Part-time"
	Contract   EmploymentType = "Contract"
	Internship EmploymentType = "Internship"
	Temporary  EmploymentType = "Temporary"
)

// Departments lists the departments a posting may belong to
var Departments = []string{
	"Sales", "Maintenance", "Logistics", "Quality", "Engineering", "Operations",
	"Human Resources", "Finance", "Legal", "IT", "Customer Support", "Strategy",
	"Safety", "Training", "Procurement", "Marketing", "Data",
}

// SalaryRange of a posting
type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"` // annual | monthly | hourly
}

// Career is a job posting
type Career struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Slug                 string          `json:"slug"`
	Department           string          `json:"department"`
	Location             string          `json:"location"`
	Type                 EmploymentType  `json:"type"`
	Intro                string          `json:"intro"`
	Description          ContentSection  `json:"description"`
	Responsibilities     ContentSection  `json:"responsibilities"`
	Requirements         ContentSection  `json:"requirements"`
	Benefits             *ContentSection `json:"benefits,omitempty"`
	Qualifications       *ContentSection `json:"qualifications,omitempty"`
	SalaryRange          *SalaryRange    `json:"salaryRange,omitempty"`
	Status               CareerStatus    `json:"status"`
	PostedDate           string          `json:"postedDate"`
	ExpiryDate           string          `json:"expiryDate,omitempty"`
	ClosedDate           string          `json:"closedDate,omitempty"`
	ClosedReason         string          `json:"closedReason,omitempty"`
	ApplicationsCount    int             `json:"applicationsCount"`
	NewApplicationsCount int             `json:"newApplicationsCount"`
	MetaTitle            string          `json:"metaTitle,omitempty"`
	MetaDescription      string          `json:"metaDescription,omitempty"`
	CreatedBy            string          `json:"createdBy"`
	UpdatedBy            string          `json:"updatedBy"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// CareerFilters are the career list query parameters
type CareerFilters struct {
	ListQuery
	Department string         `json:"department,omitempty"`
	Location   string         `json:"location,omitempty"`
	Type       EmploymentType `json:"type,omitempty"`
	Status     CareerStatus   `json:"status,omitempty"`
}

func (f CareerFilters) Params() map[string]any {
	p := f.ListQuery.Params()
	with(p, "department", f.Department)
	with(p, "location", f.Location)
	with(p, "type", string(f.Type))
	return with(p, "status", string(f.Status))
}

// CareerForm is the create/update payload for postings
type CareerForm struct {
	Title            string          `json:"title" validate:"notblank,trimmin=3"`
	Slug             string          `json:"slug,omitempty"`
	Department       string          `json:"department" validate:"required"`
	Location         string          `json:"location" validate:"notblank"`
	Type             EmploymentType  `json:"type" validate:"required"`
	Intro            string          `json:"intro" validate:"notblank,trimmin=10"`
	Description      ContentSection  `json:"description"`
	Responsibilities ContentSection  `json:"responsibilities"`
	Requirements     ContentSection  `json:"requirements"`
	Benefits         *ContentSection `json:"benefits,omitempty"`
	Qualifications   *ContentSection `json:"qualifications,omitempty"`
	SalaryRange      *SalaryRange    `json:"salaryRange,omitempty"`
	Status           CareerStatus    `json:"status" validate:"required"`
	PostedDate       string          `json:"postedDate,omitempty"`
	ExpiryDate       string          `json:"expiryDate,omitempty"`
	ClosedReason     string          `json:"closedReason,omitempty"`
	MetaTitle        string          `json:"metaTitle,omitempty"`
	MetaDescription  string          `json:"metaDescription,omitempty"`
}

// CareerStats are the posting counters
type CareerStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
	Closed    int `json:"closed"`
}
