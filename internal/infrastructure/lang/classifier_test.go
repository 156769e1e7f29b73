package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/cortex-shell/internal/domain"
)

func TestClassifyExplicitPrefixForcesNaturalLanguage(t *testing.T) {
	classifier := NewClassifier(domain.LangUnknown)

	tests := []struct {
		name string
		raw  string
		text string
	}{
		{name: "quote", raw: "'list files over 10MB", text: "list files over 10MB"},
		{name: "ai prefix", raw: "ai: ls -la", text: "ls -la"},
		{name: "quote on command", raw: "'rm -rf /tmp/foo", text: "rm -rf /tmp/foo"},
		{name: "prefix only", raw: "ai:", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.raw)
			assert.True(t, got.NaturalLanguage)
			assert.Equal(t, 1.0, got.Confidence)
			assert.Equal(t, tt.text, got.Text)
			assert.NotContains(t, got.Text, "ai:")
		})
	}
}

func TestClassifyScoring(t *testing.T) {
	classifier := NewClassifier(domain.LangUnknown)

	tests := []struct {
		name       string
		raw        string
		natural    bool
		language   domain.Language
		confidence float64
	}{
		{name: "known command", raw: "ls -la", natural: false, language: domain.LangCommand, confidence: 0.5},
		{name: "absolute path", raw: "/usr/bin/env", natural: false, language: domain.LangCommand, confidence: 0.5},
		{name: "assignment", raw: "FOO=bar", natural: false, language: domain.LangCommand, confidence: 0.5},
		{name: "english request", raw: "how do I count lines in these logs", natural: true, language: domain.LangEnglish, confidence: 0.5},
		{name: "chinese", raw: "列出所有文件", natural: true, language: domain.LangChinese, confidence: 0.75},
		{name: "urdu by default", raw: "فائلیں دکھائیں", natural: true, language: domain.LangUrdu, confidence: 0.75},
		{name: "hindi", raw: "फाइलें दिखाओ", natural: true, language: domain.LangHindi, confidence: 0.75},
		{name: "tie favours command", raw: "echo how are you", natural: false, language: domain.LangCommand, confidence: 0.5},
		{name: "no signal", raw: "deploy", natural: false, language: domain.LangCommand, confidence: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.raw)
			assert.Equal(t, tt.natural, got.NaturalLanguage, "natural")
			assert.Equal(t, tt.language, got.Language, "language")
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9, "confidence")
			assert.Equal(t, tt.raw, got.Text)
		})
	}
}

func TestClassifyArabicMappingIsConfigurable(t *testing.T) {
	classifier := NewClassifier(domain.LangArabic)

	got := classifier.Classify("اعرض الملفات")
	assert.True(t, got.NaturalLanguage)
	assert.Equal(t, domain.LangArabic, got.Language)
}

func TestDetectScript(t *testing.T) {
	tests := []struct {
		text string
		want domain.Script
	}{
		{text: "hello", want: domain.ScriptLatin},
		{text: "", want: domain.ScriptLatin},
		{text: "سلام", want: domain.ScriptArabic},
		{text: "नमस्ते", want: domain.ScriptDevanagari},
		{text: "你好", want: domain.ScriptCJK},
		{text: "ab 你好世界", want: domain.ScriptCJK},
		{text: "hello 你", want: domain.ScriptLatin},
		{text: "\xff\xfeabc", want: domain.ScriptLatin},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectScript(tt.text))
		})
	}
}

func TestLooksLikeCommand(t *testing.T) {
	positives := []string{"./build.sh", "src/main.go", "sudo apt update", "-h", "foo --help", "a | b", "a > out", "a >> out", "Git status"}
	for _, input := range positives {
		assert.True(t, LooksLikeCommand(input), input)
	}
	negatives := []string{"", "   ", "hello there", "deploy"}
	for _, input := range negatives {
		assert.False(t, LooksLikeCommand(input), input)
	}
}

func TestIsMultilingual(t *testing.T) {
	assert.False(t, IsMultilingual("plain ascii"))
	assert.True(t, IsMultilingual("café"))
}
