package cache

import (
	"time"

	"github.com/Delmat237/XCCM1-BACKEND/pkg/config"
)

// Named cache regions.
const (
	RegionUsers        = "users"
	RegionCompositions = "compositions"
	RegionCourses      = "courses"
	RegionGranules     = "granules"
	RegionStatistics   = "statistics"
	RegionSearch       = "search"
	RegionFiles        = "files"
	RegionEnrollments  = "enrollments"
)

// Policy describes how entries of a region are stored.
type Policy struct {
	TTL        time.Duration
	CacheNulls bool
}

// Regions is the region → policy table. It is built once and never mutated,
// so it is safe to share without synchronisation.
type Regions struct {
	defaultPolicy Policy
	policies      map[string]Policy
}

// NewRegions builds the table. Non-positive TTLs fall back to defaultTTL.
func NewRegions(defaultTTL time.Duration, ttls map[string]time.Duration) *Regions {
	if defaultTTL <= 0 {
		defaultTTL = config.DefaultCacheTTL
	}
	policies := make(map[string]Policy, len(ttls))
	for name, ttl := range ttls {
		if ttl <= 0 {
			ttl = defaultTTL
		}
		policies[name] = Policy{TTL: ttl}
	}
	return &Regions{defaultPolicy: Policy{TTL: defaultTTL}, policies: policies}
}

// RegionsFromConfig builds the table from the loaded cache configuration.
func RegionsFromConfig(cfg config.CacheConfig) *Regions {
	return NewRegions(cfg.DefaultTTL, cfg.RegionTTLs)
}

// DefaultRegions returns the built-in policy table.
func DefaultRegions() *Regions {
	return NewRegions(config.DefaultCacheTTL, config.DefaultRegionTTLs())
}

// Policy returns the policy of region, or the default policy when unlisted.
func (r *Regions) Policy(region string) Policy {
	if r == nil {
		return Policy{TTL: config.DefaultCacheTTL}
	}
	if p, ok := r.policies[region]; ok {
		return p
	}
	return r.defaultPolicy
}

// TTL is a shorthand for Policy(region).TTL.
func (r *Regions) TTL(region string) time.Duration {
	return r.Policy(region).TTL
}
