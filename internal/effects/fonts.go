package effects

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Builtin font identifiers.
const (
	FontBold     = "go-bold"
	FontRegular  = "go-regular"
	FontMono     = "go-mono"
	FontMonoBold = "go-mono-bold"
	DefaultFont  = FontBold
)

// FontBook resolves font identifiers to parsed faces. Identifiers are
// case-insensitive. Unknown identifiers resolve to DefaultFont.
type FontBook struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

var (
	defaultBook     *FontBook
	defaultBookOnce sync.Once
)

// DefaultFonts returns a shared book holding only the builtin Go fonts.
func DefaultFonts() *FontBook {
	defaultBookOnce.Do(func() {
		defaultBook = NewFontBook()
	})
	return defaultBook
}

// NewFontBook creates a book preloaded with the builtin Go fonts.
func NewFontBook() *FontBook {
	b := &FontBook{fonts: make(map[string]*opentype.Font)}
	for name, data := range map[string][]byte{
		FontBold:     gobold.TTF,
		FontRegular:  goregular.TTF,
		FontMono:     gomono.TTF,
		FontMonoBold: gomonobold.TTF,
	} {
		if err := b.Register(name, data); err != nil {
			// The embedded fonts always parse.
			panic(err)
		}
	}
	return b
}

// Register parses a TrueType or OpenType font and stores it under name,
// replacing any previous entry.
func (b *FontBook) Register(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", name, err)
	}
	b.mu.Lock()
	b.fonts[strings.ToLower(name)] = f
	b.mu.Unlock()
	return nil
}

// LoadDir registers every .ttf and .otf file in dir under its base name
// without extension. Files that fail to parse are skipped with a warning.
func (b *FontBook) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping font")
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := b.Register(name, data); err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping font")
			continue
		}
		n++
	}
	return n, nil
}

// Has reports whether name is registered.
func (b *FontBook) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.fonts[strings.ToLower(name)]
	return ok
}

// Names lists the registered identifiers in sorted order.
func (b *FontBook) Names() []string {
	b.mu.RLock()
	names := make([]string, 0, len(b.fonts))
	for n := range b.fonts {
		names = append(names, n)
	}
	b.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Face returns a new face for name at the given pixel size. Faces are not
// safe for concurrent use, so each render asks for its own.
func (b *FontBook) Face(name string, size float64) (font.Face, error) {
	b.mu.RLock()
	f, ok := b.fonts[strings.ToLower(name)]
	if !ok {
		f = b.fonts[DefaultFont]
	}
	b.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("font %q not available", name)
	}

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
