package tenancy

import (
	"context"
	"strconv"

	gocache "github.com/patrickmn/go-cache"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
)

// LookupFunc resolves an organization by id. Owned by the persistence layer.
type LookupFunc func(ctx context.Context, id int64) (*objects.Organization, error)

// OrganizationResolver resolves the ambient tenant id to the full
// organization entity, caching results per id with a TTL.
type OrganizationResolver struct {
	lookup LookupFunc
	cache  *gocache.Cache
}

func NewOrganizationResolver(lookup LookupFunc) *OrganizationResolver {
	ttl := CurrentConfig().ResolverTTL

	return &OrganizationResolver{
		lookup: lookup,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Current resolves the organization for the ambient tenant id.
//
// Lookup failures are deliberately downgraded to a missing result: resolving
// the tenant entity is a convenience and must never crash unrelated request
// handling. They are logged at warn level.
func (r *OrganizationResolver) Current(ctx context.Context) (*objects.Organization, bool) {
	id, ok := contexts.GetTenantID(ctx)
	if !ok {
		return nil, false
	}

	if org, ok := contexts.GetOrganization(ctx); ok {
		return org, true
	}

	key := strconv.FormatInt(id, 10)
	if cached, found := r.cache.Get(key); found {
		org, ok := cached.(*objects.Organization)
		if ok {
			contexts.CacheOrganization(ctx, org)
			return org, true
		}
	}

	org, err := r.lookup(ctx, id)
	if err != nil {
		log.Warn(ctx, "tenancy: organization lookup failed",
			log.Int64("tenant_id", id),
			log.Cause(err),
		)

		return nil, false
	}

	if org == nil {
		return nil, false
	}

	r.cache.Set(key, org, gocache.DefaultExpiration)
	contexts.CacheOrganization(ctx, org)

	return org, true
}

// Invalidate drops the cached entity for the given organization id.
// Called after organization mutations.
func (r *OrganizationResolver) Invalidate(id int64) {
	r.cache.Delete(strconv.FormatInt(id, 10))
}
