package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrPhotoNotFound is returned when a photo id is not present in the cache.
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is a decoded source photograph.
//
// The pixel buffer is owned by the Photo and is never modified after Decode
// returns; render stages copy out of it.
type Photo struct {
	// ID uniquely identifies this upload. A new id is issued every time a
	// file is loaded, even if the path is the same.
	ID string `json:"id"`

	// Path is the file the photo was read from, empty for in-memory uploads.
	Path string `json:"path,omitempty"`

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string `json:"format"`

	// Image holds the decoded pixels.
	Image *image.NRGBA `json:"-"`
}

// Width returns the photo width in pixels.
func (p *Photo) Width() int { return p.Image.Bounds().Dx() }

// Height returns the photo height in pixels.
func (p *Photo) Height() int { return p.Image.Bounds().Dy() }

// Decode reads an encoded image and returns it as an NRGBA photo with a
// fresh id. EXIF orientation is applied so that the pixels match how the
// photo is displayed.
func Decode(r io.Reader) (*Photo, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	nrgba := ToNRGBA(img)
	if nrgba.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	return &Photo{
		ID:     uuid.NewString(),
		Format: format,
		Image:  nrgba,
	}, nil
}

// PhotoCache keeps decoded photos in memory, keyed by photo id.
//
// Photos stay cached until explicitly evicted; loading a file again creates
// a second entry with a new id so analysis results tied to the old upload
// are never reused for the new one.
type PhotoCache struct {
	mu     sync.RWMutex
	photos map[string]*Photo
}

// NewPhotoCache creates an empty cache.
func NewPhotoCache() *PhotoCache {
	return &PhotoCache{
		photos: make(map[string]*Photo),
	}
}

// Load decodes the file at path and stores it in the cache.
func (c *PhotoCache) Load(path string) (*Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	photo, err := Decode(f)
	if err != nil {
		return nil, err
	}
	photo.Path = path

	c.Put(photo)
	return photo, nil
}

// Put stores an already decoded photo.
func (c *PhotoCache) Put(p *Photo) {
	c.mu.Lock()
	c.photos[p.ID] = p
	c.mu.Unlock()
}

// Get returns the photo with the given id.
func (c *PhotoCache) Get(id string) (*Photo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.photos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, id)
	}
	return p, nil
}

// Evict removes a photo from the cache. Unknown ids are ignored.
func (c *PhotoCache) Evict(id string) {
	c.mu.Lock()
	delete(c.photos, id)
	c.mu.Unlock()
}

// Clear removes every photo from the cache.
func (c *PhotoCache) Clear() {
	c.mu.Lock()
	c.photos = make(map[string]*Photo)
	c.mu.Unlock()
}

// Len reports how many photos are cached.
func (c *PhotoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}

// PhotoInfo describes a cached photo without exposing its pixels.
type PhotoInfo struct {
	ID       string `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	FileName string `json:"file_name,omitempty"`
	HasAlpha bool   `json:"has_alpha"`
}

// Info summarises a photo.
//
// HasAlpha is true when any pixel is not fully opaque.
func Info(p *Photo) *PhotoInfo {
	info := &PhotoInfo{
		ID:     p.ID,
		Width:  p.Width(),
		Height: p.Height(),
		Format: strings.ToLower(p.Format),
	}
	if p.Path != "" {
		info.FileName = filepath.Base(p.Path)
	}

	pix := p.Image.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			info.HasAlpha = true
			break
		}
	}
	return info
}
