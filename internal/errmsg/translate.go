package errmsg

import (
	"strings"

	"golang.org/x/text/language"
)

// Context names the operation family an error came from. It selects the
// fallback message when the raw text is not recognised.
type Context string

const (
	ContextAuth       Context = "auth"
	ContextConnection Context = "connection"
	ContextConfig     Context = "config"
	ContextDatabase   Context = "database"
	ContextFetch      Context = "fetch"
	ContextCreate     Context = "create"
	ContextUpdate     Context = "update"
	ContextDelete     Context = "delete"
)

// DefaultLocale is used when no locale is requested or none matches.
var DefaultLocale = language.Korean

// Translator picks a message catalog for a locale and resolves raw errors.
// The zero value is not usable; call NewTranslator.
type Translator struct {
	supported []language.Tag
	matcher   language.Matcher
}

// NewTranslator builds a Translator whose default locale is def.
// An unsupported def falls back to DefaultLocale.
func NewTranslator(def language.Tag) *Translator {
	if _, ok := catalogs[def]; !ok {
		def = DefaultLocale
	}
	supported := []language.Tag{def}
	for _, tag := range []language.Tag{language.Korean, language.English} {
		if tag != def {
			supported = append(supported, tag)
		}
	}
	return &Translator{supported: supported, matcher: language.NewMatcher(supported)}
}

// Default returns the translator's fallback locale.
func (t *Translator) Default() language.Tag {
	return t.supported[0]
}

// Match returns the best supported locale for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.Default()
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.Default()
	}
	return t.supported[idx]
}

// Translate resolves raw into a message in locale tag:
//  1. exact match of the raw message in the known-message table,
//  2. case-insensitive substring match against the same table,
//  3. the fallback for ctx, when ctx is known,
//  4. the generic unknown message.
//
// It never panics.
func (t *Translator) Translate(tag language.Tag, raw Raw, ctx Context) (msg string) {
	defer func() {
		if recover() != nil {
			msg = Render(tag, KeyUnknown)
		}
	}()
	return Render(tag, Resolve(raw, ctx))
}

// Resolve returns the message key for raw without rendering it.
func Resolve(raw Raw, ctx Context) Key {
	if key, ok := Lookup(Message(raw)); ok {
		return key
	}
	if key, ok := contextFallback[ctx]; ok {
		return key
	}
	return KeyUnknown
}

// Lookup finds the key for a raw message by exact, then case-insensitive substring match.
func Lookup(raw string) (Key, bool) {
	if raw == "" {
		return "", false
	}
	for _, m := range rawMessages {
		if m.raw == raw {
			return m.key, true
		}
	}
	lower := strings.ToLower(raw)
	for _, m := range rawMessages {
		if strings.Contains(lower, strings.ToLower(m.raw)) {
			return m.key, true
		}
	}
	return "", false
}

// Render renders key in locale tag, falling back to the default locale catalog.
func Render(tag language.Tag, key Key) string {
	if cat, ok := catalogs[tag]; ok {
		if s, ok := cat[key]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLocale][key]; ok {
		return s
	}
	return catalogs[DefaultLocale][KeyUnknown]
}

var defaultTranslator = NewTranslator(DefaultLocale)

// Translate resolves raw in the default locale.
func Translate(raw Raw, ctx Context) string {
	return defaultTranslator.Translate(DefaultLocale, raw, ctx)
}
