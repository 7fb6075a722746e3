package notary

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// DependencyResolver fetches a transaction by id, for a validating
// notary re-verifying a dependency's contracts transitively.
type DependencyResolver func(txID util.SecureHash) (*merkletx.Transaction, error)

// DependencyCache bounds how many previously-resolved dependency
// transactions a validating service keeps around, keyed by txId — see
// DESIGN.md's Open Question decision on whether a validating notary
// must re-verify a dependency it has already seen: this cache is what
// makes that choice cheap to exercise.
type DependencyCache struct {
	cache *lru.Cache
}

// NewDependencyCache builds a cache of size entries.
func NewDependencyCache(size int) (*DependencyCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &DependencyCache{cache: c}, nil
}

// Resolve returns the cached dependency transaction for txID, fetching
// it with fetch and caching the result on a miss.
func (c *DependencyCache) Resolve(txID util.SecureHash, fetch DependencyResolver) (*merkletx.Transaction, error) {
	if v, ok := c.cache.Get(txID); ok {
		return v.(*merkletx.Transaction), nil
	}
	tx, err := fetch(txID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(txID, tx)
	return tx, nil
}
