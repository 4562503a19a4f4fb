package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// TumblrService derives the well-known blog URLs for a name and probes the
// avatar API to confirm the blog exists.
type TumblrService struct {
	fetcher *fetch.Client
}

func NewTumblrService(fetcher *fetch.Client) *TumblrService {
	return &TumblrService{fetcher: fetcher}
}

func (s *TumblrService) Name() string { return "Tumblr" }

func (s *TumblrService) Accepts(tag classify.Tag) bool {
	if !matchesCategory(tag, classify.CategorySocial, "tumblr") {
		return false
	}
	return tag.Subtype == classify.SubtypeUsername || tag.Subtype == "blog"
}

func (s *TumblrService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	res := newResult(s.Name(), query, tag)
	blog := strings.TrimSuffix(query, ".tumblr.com")

	res.Data["archive_url"] = fmt.Sprintf("http://%s.tumblr.com/archive", blog)
	res.Data["likes_url"] = fmt.Sprintf("http://%s.tumblr.com/likes", blog)
	res.Data["following_url"] = fmt.Sprintf("http://%s.tumblr.com/following", blog)
	res.Data["followers_url"] = fmt.Sprintf("http://%s.tumblr.com/followers", blog)

	avatarAPI := fmt.Sprintf("https://api.tumblr.com/v2/blog/%s.tumblr.com/avatar/512", blog)
	res.Data["avatar_api_url"] = avatarAPI

	res.Success = true

	resp, err := s.fetcher.Get(ctx, avatarAPI, s.Name())
	if err != nil {
		res.Data["avatar_accessible"] = false
		return res
	}
	res.StatusCode = resp.StatusCode
	res.ResponseTime = resp.Elapsed.Seconds()
	if resp.OK() {
		res.Data["avatar_accessible"] = true
		res.Data["avatar_direct_url"] = resp.FinalURL
	} else {
		res.Data["avatar_accessible"] = false
	}
	return res
}
