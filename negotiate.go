package svcmap

import (
	"mime"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// negotiateEncoder picks an encoder from the offered set based on the
// Accept header value. Returns (first offer, true) for empty or */*
// accept values, and (nil, false) when an explicit Accept matches no
// offer.
func negotiateEncoder(accept string, offers []Encoder) (Encoder, bool) {
	if len(offers) == 0 {
		return nil, false
	}
	if accept == "" {
		return offers[0], true
	}

	type candidate struct {
		encoder Encoder
		quality float64
	}

	var best candidate
	best.quality = -1

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= best.quality || q == 0 {
			continue
		}

		if mediaType == "*/*" {
			best = candidate{encoder: offers[0], quality: q}
			continue
		}

		for _, enc := range offers {
			if mediaMatches(mediaType, enc.ContentType()) {
				best = candidate{encoder: enc, quality: q}
				break
			}
		}
	}

	if best.encoder == nil {
		return nil, false
	}
	return best.encoder, true
}

// mediaMatches reports whether an Accept media range matches a concrete
// content type, honoring type wildcards like "application/*".
func mediaMatches(pattern, contentType string) bool {
	if pattern == contentType {
		return true
	}
	main, sub, ok := strings.Cut(pattern, "/")
	if !ok || sub != "*" {
		return false
	}
	ctMain, _, _ := strings.Cut(contentType, "/")
	return main == ctMain
}

// langSet holds the parsed language declarations of one operation and
// the matcher built over them. Built once at registration time.
type langSet struct {
	tags    []string
	matcher language.Matcher
}

// newLangSet parses the declared BCP 47 tags. Malformed declarations are
// a registration-time programming error.
func newLangSet(tags []string) *langSet {
	if len(tags) == 0 {
		return nil
	}
	parsed := make([]language.Tag, len(tags))
	for i, t := range tags {
		parsed[i] = language.MustParse(t)
	}
	return &langSet{tags: tags, matcher: language.NewMatcher(parsed)}
}

// negotiate matches an Accept-Language header value against the declared
// languages. An empty header selects the first declaration. Returns
// ("", false) when the header names no acceptable language.
func (ls *langSet) negotiate(acceptLanguage string) (string, bool) {
	if acceptLanguage == "" {
		return ls.tags[0], true
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return ls.tags[0], true
	}

	_, idx, conf := ls.matcher.Match(prefs...)
	if conf == language.No {
		return "", false
	}
	return ls.tags[idx], true
}
