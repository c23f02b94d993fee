package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/internal/resource"
	"github.com/terra-clan/backoffice/pkg/client"
)

// ErrUnknownResource is returned for a resource name the registry does not hold
var ErrUnknownResource = errors.New("unknown resource")

// Registry holds one configured resource per backend resource
type Registry struct {
	Admins       *resource.Resource[models.Admin]
	Careers      *resource.Resource[models.Career]
	Applications *resource.Resource[models.Application]
	Insights     *resource.Resource[models.Insight]
	Products     *resource.Resource[models.Product]
	Categories   *resource.Resource[models.Category]
	Leads        *resource.Resource[models.Lead]
	Licenses     *resource.Resource[models.License]
	Quotes       *resource.Resource[models.Quote]
	Users        *resource.Resource[models.User]
	Analytics    *Analytics

	api   *client.Client
	cache *querycache.Cache

	mu      sync.RWMutex
	handles map[string]resource.Handle
}

// NewRegistry creates every resource over one client and cache
func NewRegistry(api *client.Client, cache *querycache.Cache) *Registry {
	r := &Registry{
		api:     api,
		cache:   cache,
		handles: make(map[string]resource.Handle),
	}

	r.Admins = resource.New[models.Admin](api, cache, resource.Config{
		Name: "admins",
		Path: "/admin/admins",
		Actions: map[string]resource.Action{
			"status": {Method: http.MethodPatch, Subpath: "status"},
		},
	})
	r.Careers = resource.New[models.Career](api, cache, resource.Config{
		Name:         "careers",
		Path:         "/admin/careers",
		ListKey:      querycache.NewKey("careers", "list"),
		DetailKey:    querycache.NewKey("careers", "detail"),
		StatsPath:    "stats",
		StatsKey:     querycache.NewKey("careers", "stats"),
		UpdateMethod: http.MethodPut,
	})
	r.Applications = resource.New[models.Application](api, cache, resource.Config{
		Name:      "applications",
		Path:      "/admin/applications",
		ListKey:   querycache.NewKey("applications", "list"),
		DetailKey: querycache.NewKey("applications", "detail"),
		StatsPath: "stats",
		StatsKey:  querycache.NewKey("applications", "stats"),
		Actions: map[string]resource.Action{
			"status": {Method: http.MethodPatch, Subpath: "status"},
		},
		Related: []querycache.Key{querycache.NewKey("applications", "career")},
	})
	r.Insights = resource.New[models.Insight](api, cache, resource.Config{
		Name:         "insights",
		Path:         "/admin/insights",
		ListKey:      querycache.NewKey("insights", "list"),
		DetailKey:    querycache.NewKey("insights", "detail"),
		StatsPath:    "stats",
		StatsKey:     querycache.NewKey("insights", "stats"),
		UpdateMethod: http.MethodPut,
		Related:      []querycache.Key{querycache.NewKey("insights", "tags")},
	})
	r.Products = resource.New[models.Product](api, cache, resource.Config{
		Name: "products",
		Path: "/inventory/products",
	})
	r.Categories = resource.New[models.Category](api, cache, resource.Config{
		Name:      "categories",
		Path:      "/inventory/categories",
		DetailKey: querycache.NewKey("category"),
	})
	r.Leads = resource.New[models.Lead](api, cache, resource.Config{
		Name: "leads",
		Path: "/admin/contact-submissions",
		Actions: map[string]resource.Action{
			"status": {Method: http.MethodPatch, Subpath: "status"},
		},
	})
	r.Licenses = resource.New[models.License](api, cache, resource.Config{
		Name: "licenses",
		Path: "/admin/licenses",
		Actions: map[string]resource.Action{
			"revoke":       {Method: http.MethodPatch, Subpath: "revoke"},
			"clear-device": {Method: http.MethodPatch, Subpath: "clear-device"},
		},
	})
	r.Quotes = resource.New[models.Quote](api, cache, resource.Config{
		Name: "quotes",
		Path: "/admin/quotes",
		Actions: map[string]resource.Action{
			"status": {Method: http.MethodPatch},
		},
	})
	r.Users = resource.New[models.User](api, cache, resource.Config{
		Name: "users",
		Path: "/admin/users",
		Actions: map[string]resource.Action{
			"suspension": {Method: http.MethodPatch, Subpath: "suspension"},
		},
	})
	r.Analytics = &Analytics{api: api, cache: cache}

	for _, h := range []resource.Handle{
		r.Admins, r.Careers, r.Applications, r.Insights, r.Products,
		r.Categories, r.Leads, r.Licenses, r.Quotes, r.Users,
	} {
		r.Register(h)
	}

	return r
}

// Register adds a resource handle to the registry
func (r *Registry) Register(h resource.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.Name()] = h
}

// Get retrieves a resource handle by name
func (r *Registry) Get(name string) (resource.Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownResource)
	}
	return h, nil
}

// List returns all registered resource names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cache returns the shared server state cache
func (r *Registry) Cache() *querycache.Cache {
	return r.cache
}

// Client returns the shared API client
func (r *Registry) Client() *client.Client {
	return r.api
}

// Permissions lists the grantable admin permissions
func (r *Registry) Permissions(ctx context.Context) ([]models.PermissionDefinition, error) {
	var out []models.PermissionDefinition
	if err := r.Admins.Fetch(ctx, querycache.NewKey("admin", "permissions"), "/admin/permissions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CareerApplications is the per-posting application listing
type CareerApplications struct {
	Career struct {
		ID                string `json:"id"`
		Title             string `json:"title"`
		Department        string `json:"department"`
		ApplicationsCount int    `json:"applicationsCount"`
	} `json:"career"`
	Applications []models.Application `json:"applications"`
}

// ApplicationsByCareer lists the applications to one posting
func (r *Registry) ApplicationsByCareer(ctx context.Context, careerID string) (*CareerApplications, error) {
	var out CareerApplications
	key := querycache.NewKey("applications", "career", careerID)
	if err := r.Applications.Fetch(ctx, key, "/admin/applications/career/"+url.PathEscape(careerID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InsightTags lists the tags in use across articles
func (r *Registry) InsightTags(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.Insights.Fetch(ctx, querycache.NewKey("insights", "tags"), "/admin/insights/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
