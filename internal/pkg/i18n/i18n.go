// Package i18n resolves user-facing messages for the request's negotiated language.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // default, must stay first
	language.Turkish,
}

var matcher = language.NewMatcher(supported)

type contextKey struct{}

// Match picks the best supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// WithLanguage stores the negotiated language in ctx.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// Language returns the language stored in ctx, English when absent.
func Language(ctx context.Context) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(contextKey{}).(language.Tag); ok {
			return tag
		}
	}
	return supported[0]
}

// T translates key for the language in ctx, falling back to English and then to the key itself.
func T(ctx context.Context, key string) string {
	base, _ := Language(ctx).Base()
	if msgs, ok := catalog[base.String()]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog["en"][key]; ok {
		return msg
	}
	return key
}
