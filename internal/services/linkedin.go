package services

import (
	"context"
	"strings"

	"github.com/kayz/osprey/internal/classify"
)

// LinkedInService derives enhancement URLs from a profile URL. It performs
// no network calls of its own: LinkedIn blocks anonymous scraping, so the
// useful output is the set of deep links an investigator opens manually.
type LinkedInService struct{}

func NewLinkedInService() *LinkedInService { return &LinkedInService{} }

func (s *LinkedInService) Name() string { return "LinkedIn" }

func (s *LinkedInService) Accepts(tag classify.Tag) bool {
	if !matchesCategory(tag, classify.CategorySocial, "linkedin") {
		return false
	}
	switch tag.Subtype {
	case "profile_photo", "recent_activity", classify.SubtypeEmailLookup:
		return true
	}
	return false
}

func (s *LinkedInService) Search(_ context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	res.Success = true

	switch tag.Subtype {
	case "profile_photo":
		if strings.HasPrefix(query, "https://") {
			res.Data["enhanced_photo_url"] = query + "detail/photo/"
		}
	case "recent_activity":
		if strings.HasPrefix(query, "https://") {
			res.Data["recent_activity_url"] = query + "detail/recent-activity/"
		}
	case classify.SubtypeEmailLookup:
		// LinkedIn removed the address-book email lookup.
		res.Data["email_lookup_status"] = "deprecated"
		res.Data["note"] = "LinkedIn removed email lookup functionality"
	}

	return res
}
