package models

import "time"

// AssetContext is the domain an uploaded asset belongs to
type AssetContext string

const (
	AssetProducts   AssetContext = "products"
	AssetCategories AssetContext = "categories"
	AssetBlogs      AssetContext = "blogs"
	AssetCareers    AssetContext = "careers"
	AssetResumes    AssetContext = "resumes"
	AssetGeneral    AssetContext = "general"
)

// Valid reports whether c is a known context
func (c AssetContext) Valid() bool {
	switch c {
	case AssetProducts, AssetCategories, AssetBlogs, AssetCareers, AssetResumes, AssetGeneral:
		return true
	}
	return false
}

// AssetType is the kind of an uploaded asset
type AssetType string

const (
	AssetImage    AssetType = "image"
	AssetDocument AssetType = "document"
	AssetVideo    AssetType = "video"
)

// UploadedAsset is a recent upload record
type UploadedAsset struct {
	URL        string       `json:"url"`
	Type       AssetType    `json:"type"`
	Context    AssetContext `json:"context"`
	UploadedAt time.Time    `json:"uploadedAt"`
}

// UploadResult is the data of the asset upload endpoints
type UploadResult struct {
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`
}

// All returns every URL of the result
func (r UploadResult) All() []string {
	if len(r.URLs) > 0 {
		return r.URLs
	}
	if r.URL != "" {
		return []string{r.URL}
	}
	return nil
}
