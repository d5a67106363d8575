package options

import (
	"strings"
	"testing"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
)

func TestResolveAudioDownload(t *testing.T) {
	tests := []struct {
		quality  string
		wantKbps int
	}{
		{"low", 128},
		{"medium", 192},
		{"high", 320},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			plan, err := Resolve(Request{
				Kind:    models.KindDownload,
				URL:     "https://www.youtube.com/watch?v=abc",
				Format:  "mp3",
				Quality: tt.quality,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.FormatSelector != "bestaudio/best" {
				t.Errorf("expected audio-only selector, got %q", plan.FormatSelector)
			}
			if !plan.ExtractAudio {
				t.Error("expected audio extraction to be enabled")
			}
			if plan.AudioKbps != tt.wantKbps {
				t.Errorf("expected %d kbps, got %d", tt.wantKbps, plan.AudioKbps)
			}
			if plan.AudioFormat != "mp3" {
				t.Errorf("expected mp3 audio format, got %q", plan.AudioFormat)
			}
		})
	}
}

func TestResolveVideoDownload(t *testing.T) {
	tests := []struct {
		quality    string
		wantHeight string
	}{
		{"low", "480"},
		{"medium", "720"},
		{"high", "1080"},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			plan, err := Resolve(Request{
				Kind:    models.JobKind("download"),
				URL:     "https://vimeo.com/12345",
				Format:  "mp4",
				Quality: tt.quality,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(plan.FormatSelector, "height<="+tt.wantHeight) {
				t.Errorf("selector %q missing height cap %s", plan.FormatSelector, tt.wantHeight)
			}
			if !strings.Contains(plan.FormatSelector, "bestvideo") {
				t.Errorf("selector %q should prefer a combined video+audio stream", plan.FormatSelector)
			}
			if plan.MergeFormat != "mp4" {
				t.Errorf("expected mp4 merge format, got %q", plan.MergeFormat)
			}
			if plan.ExtractAudio {
				t.Error("video downloads must not extract audio")
			}
		})
	}
}

func TestResolveTikTokOverride(t *testing.T) {
	urls := []string{
		"https://www.tiktok.com/@user/video/7123",
		"https://tiktok.com/@user/video/7123",
	}
	for _, u := range urls {
		for _, quality := range []string{"low", "medium", "high"} {
			plan, err := Resolve(Request{
				Kind:    models.KindDownload,
				URL:     u,
				Format:  "mp4",
				Quality: quality,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.FormatSelector != "best[format_id*=nowm]/best" {
				t.Errorf("quality %s url %s: expected no-watermark selector, got %q",
					quality, u, plan.FormatSelector)
			}
		}
	}
}

func TestResolveTikTokLookalikeHostGetsNoOverride(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:    models.KindDownload,
		URL:     "https://nottiktok.com/video/1",
		Format:  "mp4",
		Quality: "medium",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(plan.FormatSelector, "nowm") {
		t.Errorf("lookalike host must not trigger the override, got %q", plan.FormatSelector)
	}
}

func TestResolveSocialHeaders(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantHeaders bool
	}{
		{"instagram", "https://www.instagram.com/reel/abc/", true},
		{"facebook", "https://www.facebook.com/watch?v=123", true},
		{"youtube", "https://www.youtube.com/watch?v=abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Resolve(Request{
				Kind:    models.KindDownload,
				URL:     tt.url,
				Format:  "mp4",
				Quality: "medium",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantHeaders {
				if plan.Headers["User-Agent"] == "" {
					t.Error("expected browser User-Agent header override")
				}
				if plan.Headers["Accept-Language"] == "" {
					t.Error("expected Accept-Language header override")
				}
				// The header override must not touch the quality cap.
				if !strings.Contains(plan.FormatSelector, "height<=720") {
					t.Errorf("header override must keep the selector, got %q", plan.FormatSelector)
				}
			} else if plan.Headers != nil {
				t.Errorf("unexpected headers for %s: %v", tt.url, plan.Headers)
			}
		})
	}
}

func TestResolveCompressPresets(t *testing.T) {
	tests := []struct {
		level     string
		wantCRF   int
		wantSpeed string
	}{
		{"low", 28, "fast"},
		{"medium", 23, "medium"},
		{"high", 18, "slow"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			plan, err := Resolve(Request{Kind: models.KindCompress, Level: tt.level})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Preset.CRF != tt.wantCRF {
				t.Errorf("expected crf %d, got %d", tt.wantCRF, plan.Preset.CRF)
			}
			if plan.Preset.Speed != tt.wantSpeed {
				t.Errorf("expected preset %s, got %s", tt.wantSpeed, plan.Preset.Speed)
			}
			if plan.TwoPass() {
				t.Error("no target size means single-pass")
			}
		})
	}
}

func TestResolveInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "unknown compression level",
			req:  Request{Kind: models.KindCompress, Level: "ultra"},
		},
		{
			name: "empty compression level",
			req:  Request{Kind: models.KindCompress},
		},
		{
			name: "unknown quality",
			req:  Request{Kind: models.KindDownload, URL: "https://a.com", Format: "mp4", Quality: "4k"},
		},
		{
			name: "unknown format",
			req:  Request{Kind: models.KindDownload, URL: "https://a.com", Format: "flv", Quality: "high"},
		},
		{
			name: "unknown kind",
			req:  Request{Kind: models.JobKind("transcode")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.IsInvalidOption(err) {
				t.Errorf("expected InvalidOption, got %v", err)
			}
		})
	}
}
