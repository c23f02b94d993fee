package models

import "time"

// LicenseStatus is the state of a desktop license key
type LicenseStatus string

const (
	LicenseInactive LicenseStatus = "inactive"
	LicenseActive   LicenseStatus = "active"
	LicenseRevoked  LicenseStatus = "revoked"
)

// ActivationInfo describes the device a license was activated on
type ActivationInfo struct {
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
	Hostname  string `json:"hostname"`
}

// License is a software license key
type License struct {
	ID                string          `json:"id"`
	Key               string          `json:"key"`
	DeviceFingerprint string          `json:"deviceFingerprint,omitempty"`
	Status            LicenseStatus   `json:"status"`
	ActivatedAt       *time.Time      `json:"activatedAt,omitempty"`
	ActivationInfo    *ActivationInfo `json:"activationInfo,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// MaskedKey returns the first segment of the key for logging
func (l *License) MaskedKey() string {
	if len(l.Key) < 8 {
		return "***"
	}
	return l.Key[:8] + "..."
}

// LicenseFilters are the license list query parameters
type LicenseFilters struct {
	ListQuery
	Status LicenseStatus `json:"status,omitempty"`
}

func (f LicenseFilters) Params() map[string]any {
	return with(f.ListQuery.Params(), "status", string(f.Status))
}

// LicenseForm creates license keys
type LicenseForm struct {
	Count int    `json:"count,omitempty"`
	Notes string `json:"notes,omitempty"`
}
