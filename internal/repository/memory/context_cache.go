package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ContextCache keeps composed grounding contexts per contract so a chat
// burst does not recompose the prompt on every turn.
type ContextCache struct {
	cache *cache.Cache
}

func NewContextCache() *ContextCache {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ContextCache{
		cache: c,
	}
}

func (r *ContextCache) Save(contractId string, systemContext string) {
	r.cache.Set(contractId, systemContext, cache.DefaultExpiration)
}

func (r *ContextCache) Get(contractId string) (string, bool) {
	if x, found := r.cache.Get(contractId); found {
		return x.(string), true
	}
	return "", false
}

func (r *ContextCache) Delete(contractId string) {
	r.cache.Delete(contractId)
}
