// Package services holds the extractor catalogue and the dispatcher that
// fans a classified query out to every matching extractor.
//
// Each extractor turns one external site's response into structured fields
// for one query type. The sites' markup is outside our control and changes
// without notice, so extraction is best-effort throughout: a missing marker
// means an omitted field, never a failed result.
package services

import (
	"context"
	"strings"

	"github.com/kayz/osprey/internal/classify"
)

// Service is one extractor. Search always returns exactly one Result and
// never panics outward; an unacceptable tag yields a failed Result with
// the "unsupported query type" error.
type Service interface {
	Name() string
	Accepts(tag classify.Tag) bool
	Search(ctx context.Context, query string, tag classify.Tag) Result
}

// Descriptor is the config-shaped description of one target platform used
// by marker-driven extractors: where to probe and which raw-text markers
// signal that a profile exists or not.
type Descriptor struct {
	Name           string   `yaml:"name"`
	URLTemplate    string   `yaml:"url_template"`
	SuccessMarkers []string `yaml:"success_markers,omitempty"`
	ErrorMarkers   []string `yaml:"error_markers,omitempty"`
}

// cutBetween returns the substring between the first occurrence of after
// and the next occurrence of before. The second return is false when either
// marker is missing; callers treat that as an omitted field.
func cutBetween(s, after, before string) (string, bool) {
	_, rest, ok := strings.Cut(s, after)
	if !ok {
		return "", false
	}
	out, _, ok := strings.Cut(rest, before)
	if !ok {
		return "", false
	}
	return out, true
}

func matchesCategory(tag classify.Tag, cat classify.Category, platform string) bool {
	if tag.Category != cat {
		return false
	}
	return tag.Platform == "" || strings.EqualFold(tag.Platform, platform)
}
