package forms

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/terra-clan/backoffice/internal/models"
)

// Validator checks a form value and returns its field errors. Validators
// are pure: the same value always yields the same errors.
type Validator[T any] func(T) Errors

const passwordRule = "Password must contain at least one uppercase letter, one lowercase letter, and one number"

var (
	lowerPattern = regexp.MustCompile(`[a-z]`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

var adminMessages = Messages{
	"username.required":         "Username must be at least 3 characters",
	"username.min":              "Username must be at least 3 characters",
	"username.max":              "Username must not exceed 50 characters",
	"username.username":         "Username can only contain letters, numbers, dots, underscores, and hyphens",
	"role":                      "Please select a valid role",
	"status":                    "Please select a valid status",
	"permissions.min":           "At least one permission must be granted",
	"permissions[].actions.min": "At least one action must be selected",
	"permissions[].resource":    "Resource is required",
	"permissions[].actions[]":   "Action cannot be empty",
}

// ValidateAdmin returns the operator validator for a mode. A password is
// required on create; on edit it is optional but checked when present.
func ValidateAdmin(mode Mode) Validator[models.AdminForm] {
	return func(f models.AdminForm) Errors {
		errs := check(f, adminMessages)

		if mode == ModeEdit && f.Password == "" {
			return errs
		}

		switch {
		case len(f.Password) < 8:
			errs["password"] = "Password must be at least 8 characters"
		case !strongPassword(f.Password):
			errs["password"] = passwordRule
		}

		switch {
		case mode == ModeCreate && f.ConfirmPassword == "":
			errs["confirmPassword"] = "Please confirm your password"
		case f.Password != f.ConfirmPassword:
			errs["confirmPassword"] = "Passwords don't match"
		}
		return errs
	}
}

func strongPassword(p string) bool {
	return lowerPattern.MatchString(p) && upperPattern.MatchString(p) && digitPattern.MatchString(p)
}

var careerMessages = Messages{
	"title.notblank": "Job title is required",
	"title.trimmin":  "Job title must be at least 3 characters",
	"department":     "Department is required",
	"location":       "Location is required",
	"type":           "Employment type is required",
	"intro.notblank": "Job intro is required",
	"intro.trimmin":  "Job intro must be at least 10 characters",
	"status":         "Status is required",
}

// ValidateCareer validates a job posting
func ValidateCareer(f models.CareerForm) Errors {
	errs := check(f, careerMessages)

	if len(f.Responsibilities.NonEmptyItems()) == 0 {
		errs["responsibilities"] = "At least one responsibility is required"
	}
	if len(f.Requirements.NonEmptyItems()) == 0 {
		errs["requirements"] = "At least one requirement is required"
	}

	if s := f.SalaryRange; s != nil {
		if s.Min != nil && s.Max != nil && *s.Min > 0 && *s.Max > 0 && *s.Min > *s.Max {
			errs["salaryRange"] = "Minimum salary cannot be greater than maximum salary"
		}
		hasAmount := (s.Min != nil && *s.Min != 0) || (s.Max != nil && *s.Max != 0)
		if hasAmount && s.Currency == "" {
			errs["salaryRange.currency"] = "Currency is required"
		}
		if hasAmount && s.Period == "" {
			errs["salaryRange.period"] = "Period is required"
		}
	}

	if f.PostedDate != "" && f.ExpiryDate != "" {
		posted, perr := parseDate(f.PostedDate)
		expiry, eerr := parseDate(f.ExpiryDate)
		if perr == nil && eerr == nil && posted.After(expiry) {
			errs["expiryDate"] = "Expiry date cannot be before posted date"
		}
	}

	return errs
}

// IsCareerFormValid is the cheap pre-check that enables saving
func IsCareerFormValid(f models.CareerForm) bool {
	return f.Title != "" && f.Department != "" && f.Location != "" &&
		f.Type != "" && f.Intro != "" && f.Status != "" &&
		len(f.Responsibilities.NonEmptyItems()) > 0 &&
		len(f.Requirements.NonEmptyItems()) > 0
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

var insightMessages = Messages{
	"title.notblank":   "Title is required",
	"title.trimmin":    "Title must be at least 5 characters",
	"excerpt.notblank": "Excerpt is required",
	"excerpt.trimmin":  "Excerpt must be at least 20 characters",
	"excerpt.trimmax":  "Excerpt must not exceed 500 characters",
	"coverImage":       "Cover image URL is required",
	"categoryId":       "Category is required",
	"tags":             "At least one tag is required",
	"status":           "Status is required",
	"readTime":         "Read time must be at least 1 minute",
}

// ValidateInsight validates an article
func ValidateInsight(f models.InsightForm) Errors {
	errs := check(f, insightMessages)
	if !hasContent(f.Content) {
		errs["content"] = "Content is required"
	}
	return errs
}

// IsInsightFormValid is the cheap pre-check that enables saving
func IsInsightFormValid(f models.InsightForm) bool {
	return f.Title != "" && f.Excerpt != "" && hasContent(f.Content) &&
		f.CoverImage != "" && f.CategoryID != "" && len(f.Tags) > 0 && f.Status != ""
}

// hasContent reports whether rich text content is a non-empty array or
// object
func hasContent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		return json.Unmarshal(raw, &items) == nil && len(items) > 0
	case '{':
		var fields map[string]json.RawMessage
		return json.Unmarshal(raw, &fields) == nil && len(fields) > 0
	}
	return false
}

var productMessages = Messages{
	"name":                         "Product name must be at least 3 characters.",
	"partNumber":                   "Part number is required.",
	"brand":                        "Brand is required.",
	"description":                  "Description must be at least 10 characters.",
	"categorySlug":                 "Category is required.",
	"subcategorySlug":              "Subcategory is required.",
	"images.min":                   "At least one product image is required.",
	"images.max":                   "Maximum 5 images allowed.",
	"images[]":                     "Invalid url",
	"tags[]":                       "Tag cannot be empty.",
	"applications[]":               "Application cannot be empty.",
	"availability":                 "Availability is required.",
	"availability.status":          "Please select an availability status.",
	"availability.minimumQuantity": "Minimum quantity cannot be negative.",
}

// ValidateProduct validates an inventory product
func ValidateProduct(f models.ProductForm) Errors {
	return check(f, productMessages)
}

var categoryMessages = Messages{
	"name":        "Category name must be at least 2 characters.",
	"description": "Description must be at least 10 characters.",
	"image":       "Please enter a valid image URL.",
}

// ValidateCategory validates an inventory category
func ValidateCategory(f models.CategoryForm) Errors {
	return check(f, categoryMessages)
}

var loginMessages = Messages{
	"username": "Username is required.",
	"password": "Password is required.",
}

// ValidateLogin validates the login form
func ValidateLogin(c models.Credentials) Errors {
	errs := check(c, loginMessages)
	if _, ok := errs["username"]; !ok && strings.TrimSpace(c.Username) == "" {
		errs["username"] = loginMessages["username"]
	}
	return errs
}
