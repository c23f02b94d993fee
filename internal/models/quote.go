package models

import "time"

// QuoteStatus is the state of a quote request
type QuoteStatus string

const (
	QuotePending   QuoteStatus = "pending"
	QuoteApproved  QuoteStatus = "approved"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteFulfilled QuoteStatus = "fulfilled"
)

// QuoteItem is a product line of a quote
type QuoteItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CustomerInfo is the contact block of a quote
type CustomerInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// QuoteUser is the populated requester of a quote
type QuoteUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Quote is a customer quote request
type Quote struct {
	ID            string       `json:"id"`
	QuoteNumber   string       `json:"quoteNumber"`
	Status        QuoteStatus  `json:"status"`
	User          QuoteUser    `json:"user"`
	CustomerInfo  CustomerInfo `json:"customerInfo"`
	Items         []QuoteItem  `json:"items"`
	CustomerNotes string       `json:"customerNotes,omitempty"`
	AdminNotes    string       `json:"adminNotes,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// QuoteFilters are the quote list query parameters
type QuoteFilters struct {
	ListQuery
	Status QuoteStatus `json:"status,omitempty"`
}

func (f QuoteFilters) Params() map[string]any {
	return with(f.ListQuery.Params(), "status", string(f.Status))
}

// QuoteUpdate is the quote patch body
type QuoteUpdate struct {
	Status     QuoteStatus `json:"status,omitempty"`
	AdminNotes string      `json:"adminNotes,omitempty"`
}
