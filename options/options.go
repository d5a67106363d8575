// Package options resolves user-facing download and compression requests
// into concrete tool invocation parameters. Resolution is pure: no I/O, and
// the only failure mode is an unrecognized option value.
package options

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
)

// Request is the user-facing side of a resolution.
type Request struct {
	Kind         models.JobKind
	URL          string // download source or compression input path
	Format       string // requested output container / audio codec
	Quality      string // low | medium | high
	Level        string // compression level, compress only
	TargetSizeMB int    // 0 means no size target
}

// Plan is the resolved, tool-ready invocation. Immutable once computed.
type Plan struct {
	// Download fields.
	FormatSelector string
	MergeFormat    string // container for merged video+audio output
	ExtractAudio   bool
	AudioFormat    string
	AudioKbps      int
	Headers        map[string]string

	// Compression fields.
	Preset          Preset
	TargetVideoKbps int // 0 when no size target was requested
}

// TwoPass reports whether the encode must run as two rate-controlled passes.
func (p Plan) TwoPass() bool { return p.TargetVideoKbps > 0 }

var audioFormats = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"opus": true,
	"wav":  true,
}

var videoFormats = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mkv":  true,
}

// Resolve maps a request onto an invocation plan. Unrecognized quality,
// format or compression-level values fail with InvalidOption; nothing here
// silently defaults.
func Resolve(req Request) (Plan, error) {
	const op = "options.Resolve"

	switch req.Kind {
	case models.KindCompress:
		preset, ok := presets[req.Level]
		if !ok {
			return Plan{}, errors.InvalidOption(op, nil,
				fmt.Sprintf("invalid compression level %q, choose from: low, medium, high", req.Level))
		}
		plan := Plan{Preset: preset}
		if req.TargetSizeMB < 0 {
			return Plan{}, errors.InvalidOption(op, nil, "target size must be positive")
		}
		return plan, nil

	case models.KindDownload:
		return resolveDownload(op, req)

	default:
		return Plan{}, errors.InvalidOption(op, nil, fmt.Sprintf("unknown job kind %q", req.Kind))
	}
}

func resolveDownload(op string, req Request) (Plan, error) {
	plan := Plan{}

	switch {
	case audioFormats[req.Format]:
		kbps, ok := audioBitrates[req.Quality]
		if !ok {
			return Plan{}, errors.InvalidOption(op, nil,
				fmt.Sprintf("invalid quality %q, choose from: low, medium, high", req.Quality))
		}
		plan.FormatSelector = "bestaudio/best"
		plan.ExtractAudio = true
		plan.AudioFormat = req.Format
		plan.AudioKbps = kbps

	case videoFormats[req.Format]:
		height, ok := videoHeights[req.Quality]
		if !ok {
			return Plan{}, errors.InvalidOption(op, nil,
				fmt.Sprintf("invalid quality %q, choose from: low, medium, high", req.Quality))
		}
		plan.FormatSelector = fmt.Sprintf(
			"bestvideo[height<=%d]+bestaudio/best/best[height<=%d]/best", height, height)
		plan.MergeFormat = req.Format

	default:
		return Plan{}, errors.InvalidOption(op, nil, fmt.Sprintf("unsupported format %q", req.Format))
	}

	host := hostOf(req.URL)

	// TikTok serves watermark-free variants under a dedicated format id;
	// prefer those over the quality-derived selection.
	if hostMatches(host, "tiktok.com") {
		plan.FormatSelector = "best[format_id*=nowm]/best"
	}

	// Instagram and Facebook reject yt-dlp's default client headers.
	if hostMatches(host, "instagram.com") || hostMatches(host, "facebook.com") {
		plan.Headers = map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
			"Accept-Language": "en-US,en;q=0.9",
		}
	}

	return plan, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
