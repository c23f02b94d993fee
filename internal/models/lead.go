package models

import "time"

// ContactStatus is the triage state of a contact submission
type ContactStatus string

const (
	ContactNew       ContactStatus = "new"
	ContactContacted ContactStatus = "contacted"
	ContactSpam      ContactStatus = "spam"
)

// Lead is a contact form submission
type Lead struct {
	ID          string        `json:"id"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	CompanyName string        `json:"companyName,omitempty"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phoneNumber,omitempty"`
	PostalCode  string        `json:"postalCode,omitempty"`
	Country     string        `json:"country,omitempty"`
	Message     string        `json:"message"`
	Status      ContactStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// LeadFilters are the lead list query parameters
type LeadFilters struct {
	ListQuery
	Status ContactStatus `json:"status,omitempty"`
}

func (f LeadFilters) Params() map[string]any {
	return with(f.ListQuery.Params(), "status", string(f.Status))
}
