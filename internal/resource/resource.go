package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/terra-clan/backoffice/internal/querycache"
	"github.com/terra-clan/backoffice/pkg/client"
)

var (
	// ErrUnknownAction is returned for an action the resource does not define
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoStats is returned when the resource has no stats endpoint
	ErrNoStats = errors.New("resource has no stats endpoint")
	// ErrNotFound is returned when the backend has no such entity
	ErrNotFound = errors.New("not found")
)

// Action is an id-scoped endpoint such as /{id}/status
type Action struct {
	Method  string
	Subpath string
}

// Config describes a backend resource
type Config struct {
	// Name is the registry name, e.g. "users"
	Name string
	// Path is the collection path, e.g. "/admin/users"
	Path string
	// ListKey prefixes every list entry, e.g. ["users"] or ["careers", "list"]
	ListKey querycache.Key
	// DetailKey prefixes point lookups, e.g. ["user"] or ["careers", "detail"]
	DetailKey querycache.Key
	// StatsPath is relative to Path; empty means no stats endpoint
	StatsPath string
	StatsKey  querycache.Key
	// UpdateMethod is PUT or PATCH
	UpdateMethod string
	Actions      map[string]Action
	// Related prefixes are invalidated by every mutation
	Related []querycache.Key
}

// Resource binds a backend resource to the shared cache
type Resource[T any] struct {
	cfg   Config
	api   *client.Client
	cache *querycache.Cache
}

// New creates a resource
func New[T any](api *client.Client, cache *querycache.Cache, cfg Config) *Resource[T] {
	if cfg.UpdateMethod == "" {
		cfg.UpdateMethod = http.MethodPatch
	}
	if cfg.ListKey == nil {
		cfg.ListKey = querycache.NewKey(cfg.Name)
	}
	if cfg.DetailKey == nil {
		cfg.DetailKey = querycache.NewKey(strings.TrimSuffix(cfg.Name, "s"))
	}
	if cfg.StatsPath != "" && cfg.StatsKey == nil {
		cfg.StatsKey = querycache.NewKey(cfg.Name, "stats")
	}
	return &Resource[T]{cfg: cfg, api: api, cache: cache}
}

// Name returns the registry name
func (r *Resource[T]) Name() string {
	return r.cfg.Name
}

// Config returns the resource description
func (r *Resource[T]) Config() Config {
	return r.cfg
}

// ListKey returns the cache key of a list request
func (r *Resource[T]) ListKey(p Params) querycache.Key {
	return r.cfg.ListKey.Append(normalize(p))
}

// DetailKey returns the cache key of a point lookup
func (r *Resource[T]) DetailKey(id string) querycache.Key {
	return r.cfg.DetailKey.Append(id)
}

// StatsKey returns the cache key of the stats endpoint
func (r *Resource[T]) StatsKey() querycache.Key {
	return r.cfg.StatsKey
}

// GetAll fetches one page of the list
func (r *Resource[T]) GetAll(ctx context.Context, p Params) (*Page[T], error) {
	params := normalize(p)
	res, err := r.cache.Query(ctx, r.ListKey(p), func(ctx context.Context) (any, error) {
		env, err := r.api.Get(ctx, r.cfg.Path, client.Query(params))
		if err != nil {
			return nil, err
		}
		return DecodePage[T](env)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.cfg.Name, err)
	}
	return querycache.As[*Page[T]](res.Data)
}

// GetByID fetches one entity
func (r *Resource[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: %w", r.cfg.Name, ErrNotFound)
	}
	res, err := r.cache.Query(ctx, r.DetailKey(id), func(ctx context.Context) (any, error) {
		env, err := r.api.Get(ctx, r.itemPath(id), nil)
		if err != nil {
			return nil, err
		}
		return Decode[T](env)
	})
	if err != nil {
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("%s %s: %w: %w", r.cfg.Name, id, ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", r.cfg.Name, id, err)
	}
	return querycache.As[*T](res.Data)
}

// GetStats fetches the stats endpoint into out
func (r *Resource[T]) GetStats(ctx context.Context, out any) error {
	if r.cfg.StatsPath == "" {
		return ErrNoStats
	}
	return r.Fetch(ctx, r.cfg.StatsKey, r.cfg.Path+"/"+strings.TrimLeft(r.cfg.StatsPath, "/"), nil, out)
}

// Fetch runs a cached GET of an arbitrary path and decodes its data into out
func (r *Resource[T]) Fetch(ctx context.Context, key querycache.Key, path string, query url.Values, out any) error {
	res, err := r.cache.Query(ctx, key, func(ctx context.Context) (any, error) {
		env, err := r.api.Get(ctx, path, query)
		if err != nil {
			return nil, err
		}
		return env.Data, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	raw, err := querycache.As[json.RawMessage](res.Data)
	if err != nil {
		return err
	}
	env := &client.Envelope{Data: raw}
	return env.DecodeData(out)
}

// Create posts a new entity
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	out, err := r.mutate(ctx, "", func(ctx context.Context) (*client.Envelope, error) {
		return r.api.Post(ctx, r.cfg.Path, body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.cfg.Name, err)
	}
	return out, nil
}

// Update sends the update verb configured for the resource
func (r *Resource[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	out, err := r.mutate(ctx, id, func(ctx context.Context) (*client.Envelope, error) {
		return r.api.Do(ctx, r.cfg.UpdateMethod, r.itemPath(id), nil, body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", r.cfg.Name, id, err)
	}
	return out, nil
}

// Delete removes an entity
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		env, err := r.api.Delete(ctx, r.itemPath(id), nil)
		if err != nil {
			return nil, err
		}
		r.cache.Remove(r.DetailKey(id))
		return env, nil
	}, r.invalidations()...)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.cfg.Name, id, err)
	}
	return nil
}

// Action calls a named id-scoped endpoint
func (r *Resource[T]) Action(ctx context.Context, id, name string, body any) (*T, error) {
	act, ok := r.cfg.Actions[name]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", r.cfg.Name, name, ErrUnknownAction)
	}
	path := r.itemPath(id)
	if act.Subpath != "" {
		path += "/" + strings.TrimLeft(act.Subpath, "/")
	}

	out, err := r.mutate(ctx, id, func(ctx context.Context) (*client.Envelope, error) {
		return r.api.Do(ctx, act.Method, path, nil, body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s %s: %w", name, r.cfg.Name, id, err)
	}
	return out, nil
}

// HasAction reports whether the resource defines name
func (r *Resource[T]) HasAction(name string) bool {
	_, ok := r.cfg.Actions[name]
	return ok
}

// mutate runs a write and, for id-scoped writes, patches the detail entry
// with the returned entity or invalidates it when none came back
func (r *Resource[T]) mutate(ctx context.Context, id string, call func(context.Context) (*client.Envelope, error)) (*T, error) {
	res, err := r.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		env, err := call(ctx)
		if err != nil {
			return nil, err
		}

		entity, derr := Decode[T](env)
		if id == "" {
			return entity, nil
		}
		if derr == nil {
			r.cache.SetData(r.DetailKey(id), entity)
		} else {
			r.cache.Invalidate(ctx, r.DetailKey(id))
		}
		return entity, nil
	}, r.invalidations()...)
	if err != nil {
		return nil, err
	}
	entity, _ := res.(*T)
	return entity, nil
}

func (r *Resource[T]) invalidations() []querycache.Key {
	keys := []querycache.Key{r.cfg.ListKey}
	if r.cfg.StatsKey != nil {
		keys = append(keys, r.cfg.StatsKey)
	}
	return append(keys, r.cfg.Related...)
}

func (r *Resource[T]) itemPath(id string) string {
	return r.cfg.Path + "/" + url.PathEscape(id)
}
