package compute

import (
	"context"
	"fmt"

	"nathanbeddoewebdev/flexctl/internal/domain"
	"nathanbeddoewebdev/flexctl/internal/extility"
)

// Filter fields understood by listResources.
const (
	FieldResourceUUID = "resourceUUID"
	FieldResourceName = "resourceName"
)

// Lookup runs single-condition searches against listResources. Each method
// makes exactly one remote call; there is no retry and no pagination.
type Lookup struct {
	api API
}

// NewLookup returns a Lookup backed by api.
func NewLookup(api API) *Lookup {
	return &Lookup{api: api}
}

// FindByUUID returns the resource of type rt with the given UUID, or nil if
// there is none. More than one match is reported as
// *domain.AmbiguousResourceError.
func (l *Lookup) FindByUUID(ctx context.Context, id string, rt extility.ResourceType) (*extility.Resource, error) {
	filter := extility.NewFilter(extility.ConditionIsEqualTo, FieldResourceUUID, id)
	res, err := l.api.ListResources(ctx, filter, rt)
	if err != nil {
		return nil, &domain.RemoteCallError{
			Op:      "listResources",
			Message: fmt.Sprintf("failed to look up %s %s", rt, id),
			Err:     err,
		}
	}

	switch len(res.List) {
	case 0:
		return nil, nil
	case 1:
		r := res.List[0]
		return &r, nil
	default:
		return nil, &domain.AmbiguousResourceError{UUID: id, Type: string(rt), Count: len(res.List)}
	}
}

// FindByPrefix returns every resource of type rt whose attribute starts with
// prefix, in provider order.
func (l *Lookup) FindByPrefix(ctx context.Context, prefix, attribute string, rt extility.ResourceType) ([]extility.Resource, error) {
	filter := extility.NewFilter(extility.ConditionStartsWith, attribute, prefix)
	return l.list(ctx, filter, rt, fmt.Sprintf("failed to list %s resources with %s prefix %q", rt, attribute, prefix))
}

// ListAll returns every resource of type rt visible to the user.
func (l *Lookup) ListAll(ctx context.Context, rt extility.ResourceType) ([]extility.Resource, error) {
	return l.list(ctx, nil, rt, fmt.Sprintf("failed to list %s resources", rt))
}

func (l *Lookup) list(ctx context.Context, filter *extility.SearchFilter, rt extility.ResourceType, msg string) ([]extility.Resource, error) {
	res, err := l.api.ListResources(ctx, filter, rt)
	if err != nil {
		return nil, &domain.RemoteCallError{Op: "listResources", Message: msg, Err: err}
	}
	return res.List, nil
}
