package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/kayz/osprey/internal/browser"
	"github.com/kayz/osprey/internal/classify"
	"github.com/kayz/osprey/internal/fetch"
)

// TikTokService probes tiktok.com profiles and hashtags. TikTok renders
// almost everything client-side, so the service prefers the injected
// headless renderer and falls back to plain HTTP when none is configured.
type TikTokService struct {
	fetcher  *fetch.Client
	renderer browser.Renderer // may be nil
}

func NewTikTokService(fetcher *fetch.Client, renderer browser.Renderer) *TikTokService {
	return &TikTokService{fetcher: fetcher, renderer: renderer}
}

func (s *TikTokService) Name() string { return "TikTok" }

func (s *TikTokService) Accepts(tag classify.Tag) bool {
	if !matchesCategory(tag, classify.CategorySocial, "tiktok") {
		return false
	}
	return tag.Subtype == classify.SubtypeUsername || tag.Subtype == classify.SubtypeHashtag
}

func (s *TikTokService) Search(ctx context.Context, query string, tag classify.Tag) Result {
	if !s.Accepts(tag) {
		return unsupported(s.Name(), query, tag)
	}

	var target string
	switch tag.Subtype {
	case classify.SubtypeUsername:
		target = "https://www.tiktok.com/@" + url.PathEscape(query)
	case classify.SubtypeHashtag:
		target = "https://www.tiktok.com/tag/" + url.PathEscape(query)
	}

	res := newResult(s.Name(), query, tag)

	var html string
	if s.renderer != nil {
		rendered, err := s.renderer.Render(ctx, target)
		if err == nil {
			html = rendered
			res.StatusCode = 200
		}
	}
	if html == "" {
		resp, err := s.fetcher.Get(ctx, target, s.Name())
		if err != nil {
			return failed(s.Name(), query, tag, err.Error())
		}
		res.StatusCode = resp.StatusCode
		res.ResponseTime = resp.Elapsed.Seconds()
		if !resp.OK() {
			res.Error = "could not access TikTok profile"
			return res
		}
		html = resp.Body
	}

	res.Success = true
	res.Data["profile_exists"] = true
	s.extract(html, res.Data)
	return res
}

func (s *TikTokService) extract(html string, data map[string]any) {
	if _, after, ok := strings.Cut(html, "background-image:url("); ok {
		if photo, _, ok := strings.Cut(after, ")"); ok {
			data["profile_photo"] = strings.Trim(photo, `"'`)
		}
	}
	if _, after, ok := strings.Cut(html, `uploadDate":"`); ok {
		if date, _, ok := strings.Cut(after, `"`); ok {
			data["video_upload_date"] = date
		}
	}
	if _, after, ok := strings.Cut(html, `poster="`); ok {
		if thumb, _, ok := strings.Cut(after, `"`); ok {
			data["video_thumbnail"] = thumb
		}
		if video, ok := cutBetween(after, `src="`, `"`); ok {
			data["video_download_url"] = strings.ReplaceAll(video, "amp;", "")
		}
	}
	// Full-size photo: TikTok appends a size suffix the markup exposes.
	if _, after, ok := strings.Cut(html, "background-image: url(&quot;"); ok {
		if photo, _, ok := strings.Cut(after, "&quot"); ok {
			data["full_size_photo"] = strings.ReplaceAll(photo, "_100x100", "")
		}
	}
}
