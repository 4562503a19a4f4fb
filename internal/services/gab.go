package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// GabService probes gab.com profiles and hashtags.
type GabService struct {
	fetcher *fetch.Client
}

func NewGabService(fetcher *fetch.Client) *GabService {
	return &GabService{fetcher: fetcher}
}

func (s *GabService) Name() string { return "Gab" }

func (s *GabService) Accepts(tag classify.Tag) bool {
	if !matchesCategory(tag, classify.CategorySocial, "gab") {
		return false
	}
	return tag.Subtype == classify.SubtypeUsername || tag.Subtype == classify.SubtypeHashtag
}

func (s *GabService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	var target string
	switch tag.Subtype {
	case classify.SubtypeUsername:
		target = "https://gab.com/" + url.PathEscape(query)
	case classify.SubtypeHashtag:
		target = "https://gab.com/tags/" + url.PathEscape(query)
	}

	resp, err := s.fetcher.Get(ctx, target, s.Name())
	if err != nil {
		return failed(s.Name(), query, tag, err.Error())
	}

	res := newResult(s.Name(), query, tag)
	res.StatusCode = resp.StatusCode
	res.ResponseTime = resp.Elapsed.Seconds()

	if !resp.OK() {
		res.Error = fmt.Sprintf("profile not found (HTTP %d)", resp.StatusCode)
		return res
	}

	res.Success = true
	res.Data["profile_exists"] = true

	// Avatar, header and video live in inline style blocks, not stable DOM
	// nodes, so they are located by raw markers.
	if _, after, ok := strings.Cut(resp.Body, `parallax"`); ok {
		if avatar, ok := cutBetween(after, "&quot;", "&quot;"); ok {
			res.Data["avatar_url"] = avatar
		}
	}
	if _, after, ok := strings.Cut(resp.Body, "account__header__info"); ok {
		if header, ok := cutBetween(after, `="`, `"`); ok {
			res.Data["header_image_url"] = header
		}
	}
	if _, after, ok := strings.Cut(resp.Body, "playsinline="); ok {
		if video, ok := cutBetween(after, `src="`, `"`); ok {
			res.Data["video_url"] = video
		}
		if poster, ok := cutBetween(after, `poster="`, `"`); ok {
			res.Data["video_thumbnail"] = poster
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body)); err == nil {
		if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
			res.Data["canonical_url"] = href
		}
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			res.Data["page_title"] = title
		}
	}

	return res
}
