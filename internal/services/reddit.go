package services

import (
	"context"
	"strings"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// RedditService analyses reddit profile pages and rewrites thread URLs to
// their removeddit mirror.
type RedditService struct {
	fetcher *fetch.Client
}

func NewRedditService(fetcher *fetch.Client) *RedditService {
	return &RedditService{fetcher: fetcher}
}

func (s *RedditService) Name() string { return "Reddit" }

func (s *RedditService) Accepts(tag classify.Tag) bool {
	if !matchesCategory(tag, classify.CategorySocial, "reddit") {
		return false
	}
	switch tag.Subtype {
	case classify.SubtypeUsername, "profile_analysis", "removeddit":
		return true
	}
	return false
}

func (s *RedditService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)

	switch tag.Subtype {
	case "removeddit":
		res.Success = true
		if strings.Contains(query, "reddit.com") {
			res.Data["removeddit_url"] = strings.Replace(query, "www.reddit.com/", "www.removeddit.com/", 1)
		}
		return res
	case classify.SubtypeUsername:
		return s.analyzeProfile(ctx, "https://www.reddit.com/user/"+query, res)
	default: // profile_analysis on a full URL
		if !strings.HasPrefix(query, "https://") {
			res.Error = "profile analysis requires a full profile URL"
			return res
		}
		return s.analyzeProfile(ctx, query, res)
	}
}

func (s *RedditService) analyzeProfile(ctx context.Context, target string, res Result) Result {
	resp, err := s.fetcher.Get(ctx, target, s.Name())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.StatusCode = resp.StatusCode
	res.ResponseTime = resp.Elapsed.Seconds()
	if !resp.OK() {
		res.Error = "could not access Reddit profile"
		return res
	}

	res.Success = true
	res.Data["profile_url"] = target

	if _, after, ok := strings.Cut(resp.Body, `<div style="background-image:url(`); ok {
		if banner, _, ok := strings.Cut(after, "?width"); ok {
			res.Data["banner_url"] = banner
		}
	}
	if _, after, ok := strings.Cut(resp.Body, `"Profile icon" src="`); ok {
		if avatar, _, ok := strings.Cut(after, `" class=`); ok {
			res.Data["avatar_url"] = trimImageURL(avatar)
		}
	}
	return res
}

// trimImageURL drops query parameters after a known image extension.
func trimImageURL(u string) string {
	for _, ext := range []string{".png", ".jpg"} {
		if head, _, ok := strings.Cut(u, ext); ok {
			return head + ext
		}
	}
	return u
}
