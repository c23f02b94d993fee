package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/terra-clan/backoffice/internal/bulk"
	"github.com/terra-clan/backoffice/internal/models"
	"github.com/terra-clan/backoffice/internal/resource"
)

// ErrUnknownBulkAction is returned for a bulk action a resource does not offer
var ErrUnknownBulkAction = errors.New("unknown bulk action")

type bulkSpec struct {
	confirm     string
	success     string
	failure     string
	destructive bool
	// permission is the action an operator needs on the resource; update
	// when empty
	permission string
	run        func(ctx context.Context, h resource.Handle, id string) error
}

func deleteSpec(noun string) bulkSpec {
	return bulkSpec{
		confirm:     "This action cannot be undone. This will permanently delete %d selected " + noun + "(s).",
		success:     "Successfully deleted %d " + noun + "s",
		failure:     "Failed to delete some " + noun + "s",
		destructive: true,
		permission:  "delete",
		run: func(ctx context.Context, h resource.Handle, id string) error {
			return h.Delete(ctx, id)
		},
	}
}

func actionSpec(action string, body any) func(ctx context.Context, h resource.Handle, id string) error {
	return func(ctx context.Context, h resource.Handle, id string) error {
		return h.Run(ctx, id, action, body)
	}
}

// bulkCatalog lists the bulk actions offered per resource
var bulkCatalog = map[string]map[string]bulkSpec{
	"users": {
		"suspend": {
			confirm: "Are you sure you want to suspend %d selected user(s)?",
			success: "Successfully suspended %d users",
			failure: "Failed to suspend some users",
			run:     actionSpec("suspension", models.Suspension{IsSuspended: true}),
		},
		"unsuspend": {
			confirm: "Are you sure you want to unsuspend %d selected user(s)?",
			success: "Successfully unsuspended %d users",
			failure: "Failed to unsuspend some users",
			run:     actionSpec("suspension", models.Suspension{IsSuspended: false}),
		},
	},
	"admins": {
		"suspend": {
			confirm: "Are you sure you want to suspend %d selected admin(s)?",
			success: "Successfully marked %d admins as suspended",
			failure: "Failed to update status for some admins",
			run:     actionSpec("status", models.StatusUpdate{Status: string(models.AdminSuspended)}),
		},
		"activate": {
			confirm: "Are you sure you want to activate %d selected admin(s)?",
			success: "Successfully marked %d admins as active",
			failure: "Failed to update status for some admins",
			run:     actionSpec("status", models.StatusUpdate{Status: string(models.AdminActive)}),
		},
	},
	"quotes": {
		"delete": deleteSpec("quote"),
	},
	"leads": {
		"delete": deleteSpec("lead"),
		"mark-contacted": {
			confirm: "Mark %d selected lead(s) as contacted?",
			success: "Successfully marked %d leads as contacted",
			failure: "Failed to update status for some leads",
			run:     actionSpec("status", models.StatusUpdate{Status: string(models.ContactContacted)}),
		},
		"mark-spam": {
			confirm: "Mark %d selected lead(s) as spam?",
			success: "Successfully marked %d leads as spam",
			failure: "Failed to update status for some leads",
			run:     actionSpec("status", models.StatusUpdate{Status: string(models.ContactSpam)}),
		},
	},
	"products": {
		"delete": deleteSpec("product"),
	},
	"licenses": {
		"revoke": {
			confirm:     "Are you sure you want to revoke %d selected license(s)?",
			success:     "Successfully revoked %d licenses",
			failure:     "Failed to revoke some licenses",
			destructive: true,
			run:         actionSpec("revoke", nil),
		},
	},
	"applications": {
		"reject": {
			confirm: "Reject %d selected application(s)?",
			success: "Successfully rejected %d applications",
			failure: "Failed to update status for some applications",
			run:     actionSpec("status", models.ApplicationStatusUpdate{Status: models.ApplicationRejected}),
		},
		"shortlist": {
			confirm: "Shortlist %d selected application(s)?",
			success: "Successfully shortlisted %d applications",
			failure: "Failed to update status for some applications",
			run:     actionSpec("status", models.ApplicationStatusUpdate{Status: models.ApplicationShortlisted}),
		},
		"delete": deleteSpec("application"),
	},
	"careers": {
		"delete": deleteSpec("career"),
	},
	"insights": {
		"delete": deleteSpec("insight"),
	},
}

// BulkAction returns the bulk action name of resource bound to its handle
func (r *Registry) BulkAction(resourceName, name string) (bulk.Action, error) {
	h, err := r.Get(resourceName)
	if err != nil {
		return bulk.Action{}, err
	}

	def, ok := bulkCatalog[resourceName][name]
	if !ok {
		return bulk.Action{}, fmt.Errorf("%s %s: %w", resourceName, name, ErrUnknownBulkAction)
	}

	permission := def.permission
	if permission == "" {
		permission = "update"
	}

	return bulk.Action{
		Name:        resourceName + "." + name,
		Confirm:     def.confirm,
		Success:     def.success,
		Failure:     def.failure,
		Destructive: def.destructive,
		Permission:  permission,
		Run: func(ctx context.Context, id string) error {
			return def.run(ctx, h, id)
		},
	}, nil
}

// BulkActions lists the bulk action names a resource offers
func (r *Registry) BulkActions(resourceName string) []string {
	names := make([]string, 0, len(bulkCatalog[resourceName]))
	for name := range bulkCatalog[resourceName] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
