package analysis

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
)

// Entry holds the analysis results known for one photo.
type Entry struct {
	Mask     *effects.Mask
	Points   []effects.StructurePoint
	Modified time.Time
}

// Cache stores analysis results by photo id. It is safe for concurrent use.
//
// Photo ids are never reused, so once an id is forgotten the cache refuses
// to store anything under it again. An analysis that finishes after its
// photo was replaced therefore leaves no entry behind.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	forgotten map[string]struct{}
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries:   make(map[string]*Entry),
		forgotten: make(map[string]struct{}),
	}
}

// Get returns a copy of the entry for id.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	out := *e
	out.Points = append([]effects.StructurePoint(nil), e.Points...)
	return out, true
}

// SetMask stores the mask for id. A nil mask clears it. It reports false,
// storing nothing, when id has been forgotten.
func (c *Cache) SetMask(id string, m *effects.Mask) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	if e == nil {
		return false
	}
	if m != nil {
		cp := *m
		m = &cp
	}
	e.Mask = m
	e.Modified = time.Now()
	return true
}

// SetPoints stores the anchor points for id. Nil clears them. It reports
// false, storing nothing, when id has been forgotten.
func (c *Cache) SetPoints(id string, pts []effects.StructurePoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(id)
	if e == nil {
		return false
	}
	e.Points = append([]effects.StructurePoint(nil), pts...)
	if len(e.Points) == 0 {
		e.Points = nil
	}
	e.Modified = time.Now()
	return true
}

// Forget drops everything stored for id and rejects later writes to it.
func (c *Cache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.forgotten[id] = struct{}{}
}

// Len returns the number of photos with cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// entry returns the entry for id, creating it if needed. It returns nil
// for a forgotten id.
func (c *Cache) entry(id string) *Entry {
	if _, gone := c.forgotten[id]; gone {
		return nil
	}
	e, ok := c.entries[id]
	if !ok {
		e = &Entry{}
		c.entries[id] = e
	}
	return e
}

// Service runs analyzers and remembers their results per photo.
type Service struct {
	Masks  MaskAnalyzer
	Points PointAnalyzer
	Cache  *Cache
}

// NewService creates a Service with an empty cache. Either analyzer may be
// nil; the matching operation then fails with ErrNoAnalyzer.
func NewService(masks MaskAnalyzer, points PointAnalyzer) *Service {
	return &Service{Masks: masks, Points: points, Cache: NewCache()}
}

// Mask analyzes img and caches the mask under id. On error the cache is
// left as it was.
func (s *Service) Mask(ctx context.Context, id string, img image.Image) (*effects.Mask, error) {
	if s.Masks == nil {
		return nil, ErrNoAnalyzer
	}
	start := time.Now()
	m, err := s.Masks.AnalyzeMask(ctx, img)
	if err != nil {
		log.Warn().Err(err).Str("photo_id", id).Msg("Mask analysis failed")
		return nil, err
	}
	if m == nil {
		return nil, ErrBadResponse
	}
	if !s.Cache.SetMask(id, m) {
		log.Debug().Str("photo_id", id).Msg("Photo replaced during mask analysis, result not cached")
	}
	log.Info().
		Str("photo_id", id).
		Int("path_length", len(m.PathData)).
		Dur("duration", time.Since(start)).
		Msg("Mask analysis complete")
	return m, nil
}

// AnchorPoints analyzes img and caches the points under id. On error the
// cache is left as it was.
func (s *Service) AnchorPoints(ctx context.Context, id string, img image.Image) ([]effects.StructurePoint, error) {
	if s.Points == nil {
		return nil, ErrNoAnalyzer
	}
	start := time.Now()
	pts, err := s.Points.AnalyzePoints(ctx, img)
	if err != nil {
		log.Warn().Err(err).Str("photo_id", id).Msg("Point analysis failed")
		return nil, err
	}
	if !s.Cache.SetPoints(id, pts) {
		log.Debug().Str("photo_id", id).Msg("Photo replaced during point analysis, result not cached")
	}
	log.Info().
		Str("photo_id", id).
		Int("points", len(pts)).
		Dur("duration", time.Since(start)).
		Msg("Point analysis complete")
	return pts, nil
}
