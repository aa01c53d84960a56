// Package fonts locates a TrueType font that can render Korean material and
// region names in exported reports and rendered charts.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/golang/freetype/truetype"

	"github.com/piwi3910/jajaero/internal/logging"
)

// HangulSample is the text a font must cover to be accepted.
const HangulSample = "가각간값철근서울부산제주"

// ErrNotFound is returned when no configured or system font covers Hangul.
var ErrNotFound = errors.New("no TrueType font with Hangul glyphs found")

// SystemCandidates are well-known TrueType font locations with Hangul
// coverage, tried in order. Collections (.ttc) and CFF-based OpenType files
// are left out because the PDF writer cannot embed them.
var SystemCandidates = []string{
	"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
	"/usr/share/fonts/nanum/NanumGothic.ttf",
	"/usr/share/fonts/naver-nanum/NanumGothic.ttf",
	"/usr/share/fonts/truetype/unfonts-core/UnDotum.ttf",
	"/usr/share/fonts/truetype/baekmuk/dotum.ttf",
	"/Library/Fonts/NanumGothic.ttf",
	"/System/Library/Fonts/Supplemental/AppleGothic.ttf",
	`C:\Windows\Fonts\malgun.ttf`,
	`C:\Windows\Fonts\gulim.ttf`,
}

// Font is a parsed TrueType font together with its raw bytes, which the PDF
// writer embeds as is.
type Font struct {
	Path string
	Data []byte
	TTF  *truetype.Font
}

// Parse parses TrueType data. name is only used in error messages.
func Parse(name string, data []byte) (*Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	return &Font{Path: name, Data: data, TTF: ttf}, nil
}

// Load reads and parses a TrueType font file.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return Parse(path, data)
}

// Covers reports whether f has a glyph for every printable, non-space rune
// of text. A nil font covers nothing.
func Covers(f *truetype.Font, text string) bool {
	if f == nil {
		return false
	}
	for _, r := range text {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			continue
		}
		if f.Index(r) == 0 {
			return false
		}
	}
	return true
}

// Find returns the explicitly configured font when path is set, otherwise the
// first system candidate that covers Hangul. A configured font that cannot be
// loaded or lacks Hangul glyphs is an error rather than a silent fallback.
func Find(path string) (*Font, error) {
	if path != "" {
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		if !Covers(f.TTF, HangulSample) {
			return nil, fmt.Errorf("font %s has no Hangul glyphs", path)
		}
		return f, nil
	}
	return findIn(SystemCandidates)
}

func findIn(candidates []string) (*Font, error) {
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		f, err := Load(p)
		if err != nil {
			logging.Debugf("fonts: skipping %s: %v", p, err)
			continue
		}
		if Covers(f.TTF, HangulSample) {
			return f, nil
		}
		logging.Debugf("fonts: skipping %s: no Hangul glyphs", p)
	}
	return nil, ErrNotFound
}
