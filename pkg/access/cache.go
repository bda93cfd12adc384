package access

import "github.com/filez-project/filez/pkg/models"

// requestCache memoizes ListApplicablePolicies results for the lifetime of
// a single Evaluator instance. The HTTP handlers' authorize helper (C8)
// constructs a fresh Evaluator (sharing the same PolicyLister) for each
// authorization check, so this cache never outlives one request, per §4.3's
// "no cross-request caching" invariant.
type requestCache struct {
	entries map[cacheKey][]models.AccessPolicy
}

type cacheKey struct {
	resourceType string
	resourceID   models.ID
}

func newRequestCache() *requestCache {
	return &requestCache{entries: make(map[cacheKey][]models.AccessPolicy)}
}

func (c *requestCache) get(resourceType string, resourceID models.ID) ([]models.AccessPolicy, bool) {
	v, ok := c.entries[cacheKey{resourceType, resourceID}]
	return v, ok
}

func (c *requestCache) put(resourceType string, resourceID models.ID, policies []models.AccessPolicy) {
	c.entries[cacheKey{resourceType, resourceID}] = policies
}

// NewEvaluatorForRequest builds an Evaluator with a fresh per-request cache.
func NewEvaluatorForRequest(store PolicyLister) *Evaluator {
	return &Evaluator{store: store, cache: newRequestCache()}
}
