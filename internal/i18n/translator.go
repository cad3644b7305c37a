// Package i18n serves the static translation tables shipped with the binary.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is a supported UI language code
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// DefaultLanguage is used for unknown languages and missing keys
const DefaultLanguage = English

// Direction is the text direction of a language
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Translation keys used outside of the UI tables
const (
	KeySignInSuccess          = "signInSuccess"
	KeySignOutSuccess         = "signOutSuccess"
	KeySignUpSuccess          = "signUpSuccess"
	KeyIfAccountExists        = "ifAccountExists"
	KeyPasswordUpdateSuccess  = "passwordUpdateSuccess"
	KeyPostPublished          = "postPublished"
	KeyMustBeSignedIn         = "mustBeSignedIn"
	KeyRatingSubmitted        = "ratingSubmitted"
	KeyCannotRateOwnActivity  = "cannotRateOwnActivity"
	KeyPostTypeNotAllowed     = "postTypeNotAllowed"
	KeyFeedbackSubmitted      = "feedbackSubmitted"
	KeyFeedbackReplySent      = "feedbackReplySent"
	KeyFeedbackDeleted        = "feedbackDeleted"
	KeyProfileUpdateSuccess   = "profileUpdateSuccess"
	KeyUpdateAvatarSuccess    = "updateAvatarSuccess"
	KeyUploadCVSuccess        = "uploadCVSuccess"
	KeyDigestPublishedSuccess = "digestPublishedSuccess"

	KeyWeeklyRecapTitle   = "weeklyRecapTitle"
	KeyWeeklyRecapIntro   = "weeklyRecapIntro"
	KeyWeeklyRecapClosing = "weeklyRecapClosing"
	KeyAvgRating          = "avgRating"
	KeyRatings            = "ratings"

	KeyWeeklyDigestTitle = "weeklyDigestTitle"
	KeyThisWeekSummary   = "thisWeekSummary"
	KeyNewPosts          = "newPosts"
	KeyNewActivities     = "newActivities"
	KeyAnd               = "and"
	KeyHighlightPost     = "highlightPost"
	KeyDigestClosing     = "digestClosing"

	KeyAnonymous          = "anonymous"
	KeyMCQsFor            = "fileServiceMcqsFor"
	KeyAnswer             = "fileServiceAnswer"
	KeyChatInitialMessage = "chatbotInitialMessage"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator resolves keys against the embedded tables
type Translator struct {
	tables map[Language]map[string]string
}

// New loads every embedded locale table
func New() (*Translator, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	t := &Translator{tables: make(map[Language]map[string]string, len(entries))}
	for _, entry := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", entry.Name(), err)
		}

		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", entry.Name(), err)
		}

		lang := Language(strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
		t.tables[lang] = table
	}

	if _, ok := t.tables[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", DefaultLanguage)
	}

	return t, nil
}

// MustNew is New for package initialization and tests
func MustNew() *Translator {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}

// T returns the translation of key, falling back to English and then to the key itself
func (t *Translator) T(lang Language, key string) string {
	if table, ok := t.tables[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if value, ok := t.tables[DefaultLanguage][key]; ok {
		return value
	}
	return key
}

// Table returns a copy of the full table for lang with English filling any gaps
func (t *Translator) Table(lang Language) map[string]string {
	out := make(map[string]string, len(t.tables[DefaultLanguage]))
	for k, v := range t.tables[DefaultLanguage] {
		out[k] = v
	}
	for k, v := range t.tables[lang] {
		out[k] = v
	}
	return out
}

// Variants returns every distinct translation of key across loaded languages
func (t *Translator) Variants(key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, lang := range t.Languages() {
		value := t.T(lang, key)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// Supports reports whether a table exists for lang
func (t *Translator) Supports(lang Language) bool {
	_, ok := t.tables[lang]
	return ok
}

// Languages lists the loaded languages in a stable order
func (t *Translator) Languages() []Language {
	langs := make([]Language, 0, len(t.tables))
	for lang := range t.tables {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// DirectionOf returns the text direction for lang
func DirectionOf(lang Language) Direction {
	if lang == Arabic {
		return RTL
	}
	return LTR
}
