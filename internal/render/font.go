package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is the point size of text drawn without an explicit size.
const DefaultFontSize = 12

// Built-in font family names.
const (
	FamilySansSerif  = "SansSerif"
	FamilyMonospaced = "Monospaced"
)

// FontStyle represents font style variations.
type FontStyle int

const (
	// FontStyleRegular is the regular/normal font style.
	FontStyleRegular FontStyle = iota
	// FontStyleBold is the bold font style.
	FontStyleBold
	// FontStyleItalic is the italic font style.
	FontStyleItalic
	// FontStyleBoldItalic is the bold and italic font style.
	FontStyleBoldItalic
)

// String returns the string representation of a FontStyle.
func (fs FontStyle) String() string {
	switch fs {
	case FontStyleRegular:
		return "regular"
	case FontStyleBold:
		return "bold"
	case FontStyleItalic:
		return "italic"
	case FontStyleBoldItalic:
		return "bold-italic"
	default:
		return "unknown"
	}
}

// ParseFontStyle parses a string into a FontStyle.
func ParseFontStyle(s string) (FontStyle, error) {
	switch strings.ToLower(s) {
	case "regular", "normal", "plain", "":
		return FontStyleRegular, nil
	case "bold":
		return FontStyleBold, nil
	case "italic":
		return FontStyleItalic, nil
	case "bold-italic", "bolditalic", "bold_italic":
		return FontStyleBoldItalic, nil
	default:
		return FontStyleRegular, fmt.Errorf("unknown font style: %s", s)
	}
}

type faceKey struct {
	family  string
	style   FontStyle
	size    float64
	hinting font.Hinting
}

// FontManager parses font files lazily and caches sized faces.
//
// Faces are not safe for concurrent use, so a FontManager must only be
// shared by callers that are already serialized, such as the painters and
// presenter of one DoubleBuffer.
type FontManager struct {
	mu       sync.Mutex
	sources  map[string]map[FontStyle][]byte
	parsed   map[string]map[FontStyle]*opentype.Font
	faces    map[faceKey]font.Face
	fallback string
}

// NewFontManager creates a FontManager preloaded with the embedded Go fonts
// under the SansSerif and Monospaced families.
func NewFontManager() *FontManager {
	fm := &FontManager{
		sources:  make(map[string]map[FontStyle][]byte),
		parsed:   make(map[string]map[FontStyle]*opentype.Font),
		faces:    make(map[faceKey]font.Face),
		fallback: FamilySansSerif,
	}
	fm.register(FamilySansSerif, FontStyleRegular, goregular.TTF)
	fm.register(FamilySansSerif, FontStyleBold, gobold.TTF)
	fm.register(FamilySansSerif, FontStyleItalic, goitalic.TTF)
	fm.register(FamilySansSerif, FontStyleBoldItalic, gobolditalic.TTF)
	fm.register(FamilyMonospaced, FontStyleRegular, gomono.TTF)
	fm.register(FamilyMonospaced, FontStyleBold, gomonobold.TTF)
	return fm
}

func (fm *FontManager) register(family string, style FontStyle, data []byte) {
	styles, ok := fm.sources[family]
	if !ok {
		styles = make(map[FontStyle][]byte)
		fm.sources[family] = styles
	}
	styles[style] = data
}

// LoadFontFromFile registers a TrueType or OpenType file under family and style.
func (fm *FontManager) LoadFontFromFile(family string, style FontStyle, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read font file %s: %w", filePath, err)
	}
	return fm.LoadFontFromData(family, style, data)
}

// LoadFontFromData parses data and registers it under family and style.
func (fm *FontManager) LoadFontFromData(family string, style FontStyle, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font data: %w", err)
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	fm.register(family, style, data)
	if _, ok := fm.parsed[family]; !ok {
		fm.parsed[family] = make(map[FontStyle]*opentype.Font)
	}
	fm.parsed[family][style] = f
	for key, face := range fm.faces {
		if key.family == family && key.style == style {
			face.Close()
			delete(fm.faces, key)
		}
	}
	return nil
}

// Families returns the registered family names in sorted order.
func (fm *FontManager) Families() []string {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	names := make([]string, 0, len(fm.sources))
	for name := range fm.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Face returns a cached face for the family, style and size. Unknown
// families fall back to SansSerif and missing styles to regular.
func (fm *FontManager) Face(family string, style FontStyle, size float64, antialias bool) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	hinting := font.HintingNone
	if !antialias {
		hinting = font.HintingFull
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()

	family, style = fm.resolve(family, style)
	key := faceKey{family: family, style: style, size: size, hinting: hinting}
	if face, ok := fm.faces[key]; ok {
		return face, nil
	}

	f, err := fm.parse(family, style)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s face: %w", family, style, err)
	}
	fm.faces[key] = face
	return face, nil
}

func (fm *FontManager) resolve(family string, style FontStyle) (string, FontStyle) {
	styles, ok := fm.sources[family]
	if !ok {
		family = fm.fallback
		styles = fm.sources[family]
	}
	if _, ok := styles[style]; !ok {
		style = FontStyleRegular
	}
	return family, style
}

func (fm *FontManager) parse(family string, style FontStyle) (*opentype.Font, error) {
	if f, ok := fm.parsed[family][style]; ok {
		return f, nil
	}
	f, err := opentype.Parse(fm.sources[family][style])
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s %s: %w", family, style, err)
	}
	if _, ok := fm.parsed[family]; !ok {
		fm.parsed[family] = make(map[FontStyle]*opentype.Font)
	}
	fm.parsed[family][style] = f
	return f, nil
}
