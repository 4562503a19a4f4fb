package services

import (
	"sync"
	"time"

	"github.com/kayz/osprey/internal/browser"
	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/config"
	"github.com/kayz/osprey/internal/fetch"
)

// Registry holds the extractor catalogue. Registration order is the
// dispatch order within a tag, so batch output ordering stays reproducible.
type Registry struct {
	mu       sync.RWMutex
	services []Service
}

func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry builds the registry with every enabled built-in
// service wired to the shared fetcher. renderer may be nil; only the
// extractors for JavaScript-heavy targets use it.
func NewDefaultRegistry(cfg *config.Config, fetcher *fetch.Client, renderer browser.Renderer) *Registry {
	r := NewRegistry()

	all := []Service{
		NewGabService(fetcher),
		NewTikTokService(fetcher, renderer),
		NewLinkedInService(),
		NewRedditService(fetcher),
		NewTumblrService(fetcher),
		NewImageSearchService(fetcher),
		NewURLExpandService(fetcher),
		NewUsernameSweepService(fetcher),
		NewTrainerCodeService(),
	}
	for _, svc := range all {
		if !cfg.ServiceEnabled(svc.Name()) {
			continue
		}
		fetcher.SetServiceInterval(svc.Name(),
			time.Duration(cfg.ServiceRateInterval(svc.Name()))*time.Millisecond)
		r.Register(svc)
	}
	return r
}

func (r *Registry) Register(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = append(r.services, s)
}

// ForTag returns the services accepting the tag, in registration order.
func (r *Registry) ForTag(tag classify.Tag) []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Service
	for _, s := range r.services {
		if s.Accepts(tag) {
			matched = append(matched, s)
		}
	}
	return matched
}

// All returns every registered service in registration order.
func (r *Registry) All() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}
