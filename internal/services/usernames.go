package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// defaultPlatforms is the sweep catalogue: URL template plus the raw-text
// markers that distinguish a live profile from an error page.
var defaultPlatforms = []Descriptor{
	{
		Name:           "GitHub",
		URLTemplate:    "https://github.com/%s",
		ErrorMarkers:   []string{"Not Found", "404"},
		SuccessMarkers: []string{"contributions"},
	},
	{
		Name:           "Twitter",
		URLTemplate:    "https://twitter.com/%s",
		ErrorMarkers:   []string{"does not exist", "suspended"},
		SuccessMarkers: []string{"tweets", "followers"},
	},
	{
		Name:           "Instagram",
		URLTemplate:    "https://instagram.com/%s",
		ErrorMarkers:   []string{"not found", "error"},
		SuccessMarkers: []string{"posts", "followers"},
	},
	{
		Name:           "Reddit",
		URLTemplate:    "https://reddit.com/user/%s",
		ErrorMarkers:   []string{"not found", "suspended"},
		SuccessMarkers: []string{"karma", "trophy"},
	},
	{
		Name:           "YouTube",
		URLTemplate:    "https://youtube.com/@%s",
		ErrorMarkers:   []string{"not found", "404"},
		SuccessMarkers: []string{"subscribers", "videos"},
	},
}

// ambiguousPlatforms answer 200 even for missing users and signal absence
// only through error text.
var ambiguousPlatforms = map[string]bool{"Twitter": true, "Instagram": true, "YouTube": true}

// UsernameSweepService checks one username across the platform catalogue
// and reports which profiles exist.
type UsernameSweepService struct {
	fetcher   *fetch.Client
	platforms []Descriptor
}

func NewUsernameSweepService(fetcher *fetch.Client) *UsernameSweepService {
	return &UsernameSweepService{fetcher: fetcher, platforms: defaultPlatforms}
}

func (s *UsernameSweepService) Name() string { return "UsernameSweep" }

func (s *UsernameSweepService) Accepts(tag classify.Tag) bool {
	return tag.Category == classify.CategoryBulk && tag.Subtype == classify.SubtypeUsername
}

func (s *UsernameSweepService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	perPlatform := map[string]any{}
	found := 0

	for _, platform := range s.platforms {
		target := fmt.Sprintf(platform.URLTemplate, url.PathEscape(query))
		resp, err := s.fetcher.Get(ctx, target, s.Name())
		if err != nil {
			perPlatform[platform.Name] = map[string]any{
				"url":        target,
				"error":      err.Error(),
				"exists":     false,
				"accessible": false,
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		res.ResponseTime += resp.Elapsed.Seconds()

		exists := profileExists(resp, platform)
		perPlatform[platform.Name] = map[string]any{
			"url":         target,
			"status_code": resp.StatusCode,
			"exists":      exists,
			"accessible":  resp.OK(),
		}
		if exists {
			found++
		}
	}

	res.Success = found > 0
	if !res.Success && res.Error == "" {
		res.Error = fmt.Sprintf("no profiles found for username %q", query)
	}
	res.Data["platforms_checked"] = len(s.platforms)
	res.Data["profiles_found"] = found
	res.Data["results"] = perPlatform
	res.Data["summary"] = fmt.Sprintf("Found %d profiles for username '%s'", found, query)
	return res
}

// profileExists decides whether the username is taken on the platform,
// from status code first and marker text second.
func profileExists(resp *fetch.Response, platform Descriptor) bool {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false
	case resp.StatusCode == http.StatusForbidden:
		// Access denied usually means the profile exists but is private.
		return true
	case !resp.OK():
		return false
	}

	lower := strings.ToLower(resp.Body)
	for _, marker := range platform.ErrorMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return false
		}
	}

	if ambiguousPlatforms[platform.Name] {
		for _, marker := range []string{"not found", "does not exist", "suspended", "account suspended"} {
			if strings.Contains(lower, marker) {
				return false
			}
		}
		return true
	}

	for _, marker := range platform.SuccessMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return true
}
