package redis

import (
	"context"
	"errors"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/course"
	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG CACHE
// ══════════════════════════════════════════════════════════════════════════════

// cachedCourse is the JSON shape stored in Redis.
type cachedCourse struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	FacultyName   string    `json:"faculty_name"`
	Requirements  string    `json:"requirements"`
	Capacity      int       `json:"capacity"`
	DurationYears int       `json:"duration_years"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// CatalogCache caches active course listings per institution. The
// catalog is read on every browse and changes rarely.
type CatalogCache struct {
	cache *Cache
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(cache *Cache) *CatalogCache {
	return &CatalogCache{cache: cache}
}

func catalogKey(institutionID shared.InstitutionID) string {
	if institutionID == "" {
		return PrefixCatalog + "all"
	}
	return PrefixCatalog + string(institutionID)
}

// Get returns the cached active courses for an institution.
// The second return value reports whether the listing was cached.
func (c *CatalogCache) Get(ctx context.Context, institutionID shared.InstitutionID) ([]*course.Course, bool) {
	var cached []cachedCourse
	if err := c.cache.Get(ctx, catalogKey(institutionID), &cached); err != nil {
		return nil, false
	}

	courses := make([]*course.Course, 0, len(cached))
	for _, cc := range cached {
		courses = append(courses, &course.Course{
			ID:            shared.CourseID(cc.ID),
			InstitutionID: shared.InstitutionID(cc.InstitutionID),
			Name:          cc.Name,
			Code:          cc.Code,
			FacultyName:   cc.FacultyName,
			Requirements:  cc.Requirements,
			Capacity:      cc.Capacity,
			DurationYears: cc.DurationYears,
			Status:        course.CatalogStatus(cc.Status),
			CreatedAt:     cc.CreatedAt,
		})
	}
	return courses, true
}

// Set caches the active courses for an institution.
func (c *CatalogCache) Set(ctx context.Context, institutionID shared.InstitutionID, courses []*course.Course) error {
	cached := make([]cachedCourse, 0, len(courses))
	for _, cr := range courses {
		cached = append(cached, cachedCourse{
			ID:            string(cr.ID),
			InstitutionID: string(cr.InstitutionID),
			Name:          cr.Name,
			Code:          cr.Code,
			FacultyName:   cr.FacultyName,
			Requirements:  cr.Requirements,
			Capacity:      cr.Capacity,
			DurationYears: cr.DurationYears,
			Status:        string(cr.Status),
			CreatedAt:     cr.CreatedAt,
		})
	}
	return c.cache.Set(ctx, catalogKey(institutionID), cached, TTLCatalog)
}

// Invalidate drops a cached institution listing along with the combined
// all-institutions listing.
func (c *CatalogCache) Invalidate(ctx context.Context, institutionID shared.InstitutionID) error {
	err := c.cache.Delete(ctx, catalogKey(institutionID), catalogKey(""))
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}
