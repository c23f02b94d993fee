package models

import "time"

// Category is a product category
type Category struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	Image            *string   `json:"image"`
	SubcategorySlugs []string  `json:"subcategorySlugs"`
	ProductCount     int       `json:"productCount"`
	SEOTitle         string    `json:"seoTitle,omitempty"`
	SEODescription   string    `json:"seoDescription,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CategoryFilters are the category list query parameters
type CategoryFilters struct {
	ListQuery
	IsActive *bool `json:"isActive,omitempty"`
}

func (f CategoryFilters) Params() map[string]any {
	return withBool(f.ListQuery.Params(), "isActive", f.IsActive)
}

// CategoryForm is the create/update payload for categories
type CategoryForm struct {
	Name             string   `json:"name" validate:"min=2"`
	Slug             string   `json:"slug,omitempty"`
	Description      string   `json:"description" validate:"min=10"`
	Image            string   `json:"image,omitempty" validate:"omitempty,url"`
	SubcategorySlugs []string `json:"subcategorySlugs,omitempty"`
	SEOTitle         string   `json:"seoTitle,omitempty"`
	SEODescription   string   `json:"seoDescription,omitempty"`
	IsActive         bool     `json:"isActive"`
}

// ComplianceInfo of a product
type ComplianceInfo struct {
	Certifications []string `json:"certifications"`
	HasCoC         bool     `json:"hasCoC"`
	HasSDS         bool     `json:"hasSDS"`
	HasTDS         bool     `json:"hasTDS"`
	MilitarySpec   string   `json:"militarySpec,omitempty"`
}

// StorageInfo of a product
type StorageInfo struct {
	TemperatureControlled bool   `json:"temperatureControlled"`
	Hazmat                bool   `json:"hazmat"`
	ShelfLife             string `json:"shelfLife,omitempty"`
	StorageInstructions   string `json:"storageInstructions,omitempty"`
}

// AvailabilityInfo of a product
type AvailabilityInfo struct {
	Status            string `json:"status" validate:"oneof=in-stock limited lead-time quote-only"`
	LeadTime          string `json:"leadTime,omitempty"`
	MinimumQuantity   int    `json:"minimumQuantity,omitempty" validate:"min=0"`
	AllowAlternatives bool   `json:"allowAlternatives"`
}

// DocumentInfo is a product document reference
type DocumentInfo struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Product is an inventory item
type Product struct {
	ID              string            `json:"id"`
	Slug            string            `json:"slug"`
	Name            string            `json:"name"`
	PartNumber      string            `json:"partNumber"`
	CategorySlug    string            `json:"categorySlug"`
	SubcategorySlug string            `json:"subcategorySlug"`
	Brand           string            `json:"brand"`
	Description     string            `json:"description"`
	Images          []string          `json:"images"`
	Specifications  map[string]string `json:"specifications"`
	Compliance      ComplianceInfo    `json:"compliance"`
	Storage         StorageInfo       `json:"storage"`
	Availability    AvailabilityInfo  `json:"availability"`
	Documents       []DocumentInfo    `json:"documents"`
	Applications    []string          `json:"applications"`
	Tags            []string          `json:"tags"`
	SEOTitle        string            `json:"seoTitle,omitempty"`
	SEODescription  string            `json:"seoDescription,omitempty"`
	IsActive        bool              `json:"isActive"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ProductFilters are the product list query parameters
type ProductFilters struct {
	ListQuery
	CategorySlug string `json:"categorySlug,omitempty"`
	Brand        string `json:"brand,omitempty"`
	IsActive     *bool  `json:"isActive,omitempty"`
}

func (f ProductFilters) Params() map[string]any {
	p := f.ListQuery.Params()
	with(p, "categorySlug", f.CategorySlug)
	with(p, "brand", f.Brand)
	return withBool(p, "isActive", f.IsActive)
}

// ProductForm is the create/update payload for products
type ProductForm struct {
	Name            string            `json:"name" validate:"min=3"`
	PartNumber      string            `json:"partNumber" validate:"min=1"`
	Brand           string            `json:"brand" validate:"min=2"`
	Description     string            `json:"description" validate:"min=10"`
	CategorySlug    string            `json:"categorySlug" validate:"min=1"`
	SubcategorySlug string            `json:"subcategorySlug" validate:"min=1"`
	Images          []string          `json:"images" validate:"min=1,max=5,dive,url"`
	Specifications  map[string]string `json:"specifications,omitempty"`
	Compliance      *ComplianceInfo   `json:"compliance,omitempty"`
	Storage         *StorageInfo      `json:"storage,omitempty"`
	Availability    *AvailabilityInfo `json:"availability,omitempty" validate:"required"`
	Documents       []DocumentInfo    `json:"documents,omitempty"`
	Applications    []string          `json:"applications,omitempty" validate:"omitempty,dive,notblank"`
	Tags            []string          `json:"tags,omitempty" validate:"omitempty,dive,notblank"`
	SEOTitle        string            `json:"seoTitle,omitempty"`
	SEODescription  string            `json:"seoDescription,omitempty"`
	IsActive        bool              `json:"isActive"`
}
