package lang

import (
	"unicode/utf8"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// Codepoint ranges counted by DetectScript.
const (
	arabicFirst     = 0x0600
	arabicLast      = 0x06FF
	devanagariFirst = 0x0900
	devanagariLast  = 0x097F
	cjkFirst        = 0x4E00
	cjkLast         = 0x9FFF
)

// ScriptCounts holds the per-script codepoint tallies of a text.
type ScriptCounts struct {
	Latin      int
	Arabic     int
	Devanagari int
	CJK        int
}

// CountScripts decodes text as UTF-8 and tallies codepoints per script.
// Invalid bytes are skipped one at a time.
func CountScripts(text string) ScriptCounts {
	var counts ScriptCounts
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		switch {
		case r >= arabicFirst && r <= arabicLast:
			counts.Arabic++
		case r >= devanagariFirst && r <= devanagariLast:
			counts.Devanagari++
		case r >= cjkFirst && r <= cjkLast:
			counts.CJK++
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			counts.Latin++
		}
	}
	return counts
}

// DetectScript returns the dominant script of text. Latin wins every tie.
func DetectScript(text string) domain.Script {
	c := CountScripts(text)
	switch {
	case c.Arabic > c.Latin && c.Arabic > c.Devanagari:
		return domain.ScriptArabic
	case c.Devanagari > c.Latin && c.Devanagari > c.Arabic:
		return domain.ScriptDevanagari
	case c.CJK > c.Latin:
		return domain.ScriptCJK
	default:
		return domain.ScriptLatin
	}
}

// IsMultilingual reports whether any byte of text has its high bit set.
func IsMultilingual(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
