package models

import (
	"encoding/json"
	"time"
)

// InsightStatus is the publication state of an article
type InsightStatus string

const (
	InsightDraft     InsightStatus = "draft"
	InsightPublished InsightStatus = "published"
)

// Author of an article
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Insight is a published article. Content holds editor blocks verbatim.
type Insight struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Excerpt         string          `json:"excerpt"`
	Content         json.RawMessage `json:"content"`
	CoverImage      string          `json:"coverImage"`
	Author          Author          `json:"author"`
	CategoryID      string          `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	Tags            []string        `json:"tags"`
	Status          InsightStatus   `json:"status"`
	PublishedAt     *time.Time      `json:"publishedAt,omitempty"`
	Views           int             `json:"views"`
	ReadTime        int             `json:"readTime"`
	MetaTitle       string          `json:"metaTitle,omitempty"`
	MetaDescription string          `json:"metaDescription,omitempty"`
	OGImage         string          `json:"ogImage,omitempty"`
	CreatedBy       string          `json:"createdBy"`
	UpdatedBy       string          `json:"updatedBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// InsightFilters are the article list query parameters
type InsightFilters struct {
	ListQuery
	CategoryID string        `json:"categoryId,omitempty"`
	Status     InsightStatus `json:"status,omitempty"`
	Tag        string        `json:"tag,omitempty"`
}

func (f InsightFilters) Params() map[string]any {
	p := f.ListQuery.Params()
	with(p, "categoryId", f.CategoryID)
	with(p, "status", string(f.Status))
	return with(p, "tag", f.Tag)
}

// InsightForm is the create/update payload for articles
type InsightForm struct {
	Title           string          `json:"title" validate:"notblank,trimmin=5"`
	Slug            string          `json:"slug,omitempty"`
	Excerpt         string          `json:"excerpt" validate:"notblank,trimmin=20,trimmax=500"`
	Content         json.RawMessage `json:"content"`
	CoverImage      string          `json:"coverImage" validate:"notblank"`
	CategoryID      string          `json:"categoryId" validate:"required"`
	Tags            []string        `json:"tags" validate:"min=1"`
	Status          InsightStatus   `json:"status" validate:"required"`
	PublishedAt     string          `json:"publishedAt,omitempty"`
	ReadTime        int             `json:"readTime" validate:"min=1"`
	MetaTitle       string          `json:"metaTitle,omitempty"`
	MetaDescription string          `json:"metaDescription,omitempty"`
	OGImage         string          `json:"ogImage,omitempty"`
}

// InsightStats are the article counters
type InsightStats struct {
	Total      int `json:"total"`
	Published  int `json:"published"`
	Draft      int `json:"draft"`
	TotalViews int `json:"totalViews"`
}

// InsightCategories are the fixed article categories
var InsightCategories = []struct {
	ID          string
	Name        string
	Description string
}{
	{"technical", "Technical", "Technical articles and guides"},
	{"industry-news", "Industry News", "Aviation industry updates"},
	{"case-study", "Case Study", "Customer success stories"},
	{"company-news", "Company News", "Company announcements and updates"},
	{"best-practices", "Best Practices", "Industry best practices and tips"},
}
