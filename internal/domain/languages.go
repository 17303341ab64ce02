package domain

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// AutoLanguage lets the translation backend guess the source language.
const AutoLanguage = "auto"

// NativeLanguage is what the listening pipeline always translates into.
const NativeLanguage = "en"

// Language is a catalog entry.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var languageNames = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"it": "Italian", "pt": "Portuguese", "ru": "Russian", "ja": "Japanese",
	"ko": "Korean", "zh": "Chinese (Simplified)", "ar": "Arabic", "hi": "Hindi",
	"nl": "Dutch", "sv": "Swedish", "no": "Norwegian", "da": "Danish",
	"fi": "Finnish", "pl": "Polish", "cs": "Czech", "sk": "Slovak",
	"hu": "Hungarian", "ro": "Romanian", "bg": "Bulgarian", "hr": "Croatian",
}

var languageCodes = lo.Invert(languageNames)

// Languages returns the catalog sorted by display name.
func Languages() []Language {
	out := lo.MapToSlice(languageNames, func(code string, name string) Language {
		return Language{Code: code, Name: name}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LanguageName returns the display name for code, or code itself when unknown.
func LanguageName(code string) string {
	if code == AutoLanguage {
		return "Auto-detect"
	}
	if name, ok := languageNames[NormalizeLanguage(code)]; ok {
		return name
	}
	return code
}

// ResolveLanguage accepts a code or a display name ("German") and returns the
// normalized code. Unknown input is only normalized.
func ResolveLanguage(input string) string {
	if code, ok := languageCodes[strings.TrimSpace(input)]; ok {
		return code
	}
	if strings.EqualFold(strings.TrimSpace(input), LanguageName(AutoLanguage)) {
		return AutoLanguage
	}
	return NormalizeLanguage(input)
}

// KnownLanguage reports whether code is in the catalog.
func KnownLanguage(code string) bool {
	_, ok := languageNames[NormalizeLanguage(code)]
	return ok
}

// NormalizeLanguage lowercases a code and strips any region suffix ("zh-CN" -> "zh").
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
