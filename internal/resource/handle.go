package resource

import "context"

// Handle is the untyped view of a resource used by the console and CLI,
// which address resources by name
type Handle interface {
	Name() string
	ListRecords(ctx context.Context, p Params) (*Page[Record], error)
	GetRecord(ctx context.Context, id string) (Record, error)
	StatsRecord(ctx context.Context) (Record, error)
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, id, action string, body any) error
	HasAction(name string) bool
}

var _ Handle = (*Resource[Record])(nil)

// ListRecords lists rows in their wire shape
func (r *Resource[T]) ListRecords(ctx context.Context, p Params) (*Page[Record], error) {
	page, err := r.GetAll(ctx, p)
	if err != nil {
		return nil, err
	}
	return ToRecords(page)
}

// GetRecord fetches one entity in its wire shape
func (r *Resource[T]) GetRecord(ctx context.Context, id string) (Record, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToRecord(entity)
}

// StatsRecord fetches the stats endpoint in its wire shape
func (r *Resource[T]) StatsRecord(ctx context.Context) (Record, error) {
	var out Record
	if err := r.GetStats(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Run calls a named action and discards the returned entity
func (r *Resource[T]) Run(ctx context.Context, id, action string, body any) error {
	if action == "delete" {
		return r.Delete(ctx, id)
	}
	_, err := r.Action(ctx, id, action, body)
	return err
}
