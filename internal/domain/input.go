package domain

import "strings"

// Script is the dominant writing system of a piece of text.
type Script int

const (
	ScriptLatin Script = iota
	ScriptArabic
	ScriptDevanagari
	ScriptCJK
)

func (s Script) String() string {
	switch s {
	case ScriptLatin:
		return "Latin"
	case ScriptArabic:
		return "Arabic"
	case ScriptDevanagari:
		return "Devanagari"
	case ScriptCJK:
		return "CJK"
	default:
		return unknownName
	}
}

// Language is the detected or preferred language of an input.
type Language int

const (
	LangUnknown Language = iota
	LangEnglish
	LangUrdu
	LangArabic
	LangHindi
	LangSpanish
	LangFrench
	LangChinese
	LangGerman
	LangPortuguese
	LangCommand
)

var languageNames = map[Language]string{
	LangEnglish:    "English",
	LangUrdu:       "Urdu",
	LangArabic:     "Arabic",
	LangHindi:      "Hindi",
	LangSpanish:    "Spanish",
	LangFrench:     "French",
	LangChinese:    "Chinese",
	LangGerman:     "German",
	LangPortuguese: "Portuguese",
	LangCommand:    "Shell Command",
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "Unknown"
}

// ParseLanguage resolves a language name case-insensitively. "command" is
// accepted for LangCommand.
func ParseLanguage(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "command") {
		return LangCommand, true
	}
	for lang, display := range languageNames {
		if strings.EqualFold(display, name) {
			return lang, true
		}
	}
	return LangUnknown, false
}

// InputClassification is the verdict on one raw input line. Text is the
// normalized input with any explicit AI prefix removed.
type InputClassification struct {
	NaturalLanguage bool
	Language        Language
	Confidence      float64
	Text            string
}

// SystemSnapshot describes the host the shell runs on.
type SystemSnapshot struct {
	WorkingDir string
	OS         string
	Shell      string
	User       string
	Tools      []string
	GitBranch  string
}
