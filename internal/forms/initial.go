package forms

import (
	"encoding/json"
	"time"

	"github.com/terra-clan/backoffice/internal/models"
)

// NewCareerForm is the blank posting form. Responsibilities and
// requirements start with one empty item to type into.
func NewCareerForm() models.CareerForm {
	return models.CareerForm{
		Description:      models.ContentSection{Title: "Job Description"},
		Responsibilities: models.ContentSection{Title: "Key Responsibilities", Items: []string{""}},
		Requirements:     models.ContentSection{Title: "Requirements", Items: []string{""}},
		Benefits:         &models.ContentSection{Title: "Benefits"},
		Qualifications:   &models.ContentSection{Title: "Qualifications"},
		Status:           models.CareerDraft,
	}
}

// CareerFormFrom fills a posting form from a loaded posting, defaulting
// missing sections
func CareerFormFrom(c models.Career) models.CareerForm {
	blank := NewCareerForm()
	f := models.CareerForm{
		Title:            c.Title,
		Slug:             c.Slug,
		Department:       c.Department,
		Location:         c.Location,
		Type:             c.Type,
		Intro:            c.Intro,
		Description:      sectionOr(c.Description, blank.Description),
		Responsibilities: sectionOr(c.Responsibilities, blank.Responsibilities),
		Requirements:     sectionOr(c.Requirements, blank.Requirements),
		Benefits:         c.Benefits,
		Qualifications:   c.Qualifications,
		SalaryRange:      c.SalaryRange,
		Status:           c.Status,
		PostedDate:       c.PostedDate,
		ExpiryDate:       c.ExpiryDate,
		ClosedReason:     c.ClosedReason,
		MetaTitle:        c.MetaTitle,
		MetaDescription:  c.MetaDescription,
	}
	if f.Benefits == nil {
		f.Benefits = blank.Benefits
	}
	if f.Qualifications == nil {
		f.Qualifications = blank.Qualifications
	}
	if f.Status == "" {
		f.Status = models.CareerDraft
	}
	return f
}

func sectionOr(s, def models.ContentSection) models.ContentSection {
	if s.Title == "" && s.Content == "" && len(s.Items) == 0 {
		return def
	}
	return s
}

// NewInsightForm is the blank article form
func NewInsightForm() models.InsightForm {
	return models.InsightForm{
		Content:  json.RawMessage("[]"),
		Tags:     []string{},
		Status:   models.InsightDraft,
		ReadTime: 5,
	}
}

// InsightFormFrom fills an article form from a loaded article
func InsightFormFrom(in models.Insight) models.InsightForm {
	f := models.InsightForm{
		Title:           in.Title,
		Slug:            in.Slug,
		Excerpt:         in.Excerpt,
		Content:         in.Content,
		CoverImage:      in.CoverImage,
		CategoryID:      in.CategoryID,
		Tags:            in.Tags,
		Status:          in.Status,
		ReadTime:        in.ReadTime,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		OGImage:         in.OGImage,
	}
	if in.PublishedAt != nil {
		f.PublishedAt = in.PublishedAt.Format(time.RFC3339)
	}
	if len(f.Content) == 0 {
		f.Content = json.RawMessage("[]")
	}
	if f.ReadTime == 0 {
		f.ReadTime = 5
	}
	return f
}

// NewAdminForm is the blank operator form
func NewAdminForm() models.AdminForm {
	return models.AdminForm{
		Role:        models.RoleAdmin,
		Status:      models.AdminActive,
		Permissions: []models.Permission{},
	}
}

// AdminFormFrom fills an operator form from a loaded operator. Passwords
// are never loaded.
func AdminFormFrom(a models.Admin) models.AdminForm {
	return models.AdminForm{
		Username:    a.Username,
		Role:        a.Role,
		Status:      a.Status,
		Permissions: a.Permissions,
	}
}

// NewProductForm is the blank product form
func NewProductForm() models.ProductForm {
	return models.ProductForm{
		Images:       []string{},
		Compliance:   &models.ComplianceInfo{Certifications: []string{}},
		Storage:      &models.StorageInfo{},
		Availability: &models.AvailabilityInfo{Status: "in-stock"},
		IsActive:     true,
	}
}

// ProductFormFrom fills a product form from a loaded product
func ProductFormFrom(p models.Product) models.ProductForm {
	compliance, storage, availability := p.Compliance, p.Storage, p.Availability
	return models.ProductForm{
		Name:            p.Name,
		PartNumber:      p.PartNumber,
		Brand:           p.Brand,
		Description:     p.Description,
		CategorySlug:    p.CategorySlug,
		SubcategorySlug: p.SubcategorySlug,
		Images:          p.Images,
		Specifications:  p.Specifications,
		Compliance:      &compliance,
		Storage:         &storage,
		Availability:    &availability,
		Documents:       p.Documents,
		Applications:    p.Applications,
		Tags:            p.Tags,
		SEOTitle:        p.SEOTitle,
		SEODescription:  p.SEODescription,
		IsActive:        p.IsActive,
	}
}

// NewCategoryForm is the blank category form
func NewCategoryForm() models.CategoryForm {
	return models.CategoryForm{IsActive: true}
}
