package models

import "time"

// AuthProvider is how a storefront user signs in
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// QuoteRef is a short quote reference on a user
type QuoteRef struct {
	ID          string `json:"id"`
	QuoteNumber string `json:"quoteNumber"`
}

// User is a storefront customer account
type User struct {
	ID                 string       `json:"id"`
	Email              string       `json:"email"`
	Name               string       `json:"name"`
	PhoneNumber        string       `json:"phoneNumber,omitempty"`
	AuthProvider       AuthProvider `json:"authProvider"`
	IsEmailVerified    bool         `json:"isEmailVerified"`
	IsSuspended        bool         `json:"isSuspended"`
	LastLogin          *time.Time   `json:"lastLogin,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	TotalQuotes        int          `json:"totalQuotes"`
	Quotes             []QuoteRef   `json:"quotes"`
	RecentQuoteNumbers []QuoteRef   `json:"recentQuoteNumbers"`
}

// UserFilters are the user list query parameters
type UserFilters struct {
	ListQuery
	AuthProvider    AuthProvider `json:"authProvider,omitempty"`
	IsSuspended     *bool        `json:"isSuspended,omitempty"`
	IsEmailVerified *bool        `json:"isEmailVerified,omitempty"`
}

func (f UserFilters) Params() map[string]any {
	p := with(f.ListQuery.Params(), "authProvider", string(f.AuthProvider))
	withBool(p, "isSuspended", f.IsSuspended)
	return withBool(p, "isEmailVerified", f.IsEmailVerified)
}

// Suspension is the body of the user suspension endpoint
type Suspension struct {
	IsSuspended bool `json:"isSuspended"`
}
