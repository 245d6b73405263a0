// pkg/render/text.go

package render

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/charmap"
)

// textEncoder prepares strings for the selected font and refuses text the
// font cannot draw instead of letting it print garbled.
type textEncoder interface {
	encode(s string) (string, error)
}

// coreEncoder targets the built-in PDF fonts, which take Windows-1252 bytes.
type coreEncoder struct{}

func (coreEncoder) encode(s string) (string, error) {
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("text %q not representable in the core font, configure a UTF-8 font: %w", s, err)
	}
	return out, nil
}

// glyphEncoder targets an embedded TrueType font and checks every rune
// against its cmap.
type glyphEncoder struct {
	font *sfnt.Font
}

func newGlyphEncoder(data []byte) (*glyphEncoder, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &glyphEncoder{font: f}, nil
}

func (g *glyphEncoder) encode(s string) (string, error) {
	var buf sfnt.Buffer
	for _, r := range s {
		if r < 0x20 {
			continue
		}
		idx, err := g.font.GlyphIndex(&buf, r)
		if err != nil {
			return "", fmt.Errorf("glyph lookup for %q: %w", r, err)
		}
		if idx == 0 {
			return "", fmt.Errorf("font has no glyph for %q in %q", r, s)
		}
	}
	return s, nil
}
