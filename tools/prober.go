package tools

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
)

// VideoInfo is the subset of ffprobe metadata the service cares about.
type VideoInfo struct {
	Duration    float64
	Size        int64
	BitrateKbps int
	Format      string
	Width       int
	Height      int
	Codec       string
}

// Prober reads container and stream metadata from a local media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*VideoInfo, error)
}

type FFprober struct {
	cfg    config.ToolsConfig
	runner Runner
}

func NewFFprober(cfg config.ToolsConfig, runner Runner) *FFprober {
	return &FFprober{cfg: cfg, runner: runner}
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width,omitempty"`
		Height    int    `json:"height,omitempty"`
		Duration  string `json:"duration,omitempty"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

func (p *FFprober) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	const op = "FFprober.Probe"

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	output, err := p.runner.Output(ctx, p.cfg.FFprobePath, args...)
	if err != nil {
		return nil, errors.ProbeFailed(op, err, "could not read media file")
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(output, &probeData); err != nil {
		return nil, errors.ProbeFailed(op, err, "could not parse probe output")
	}

	info := &VideoInfo{Format: probeData.Format.FormatName}

	if probeData.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probeData.Format.Duration, 64); err == nil {
			info.Duration = duration
		}
	}
	if probeData.Format.Size != "" {
		if size, err := strconv.ParseInt(probeData.Format.Size, 10, 64); err == nil {
			info.Size = size
		}
	}
	if probeData.Format.BitRate != "" {
		if bitrate, err := strconv.Atoi(probeData.Format.BitRate); err == nil {
			info.BitrateKbps = bitrate / 1000
		}
	}

	for _, stream := range probeData.Streams {
		if stream.CodecType == "video" && info.Width == 0 {
			info.Width = stream.Width
			info.Height = stream.Height
			info.Codec = stream.CodecName

			// Some containers only carry duration on the stream.
			if info.Duration == 0 && stream.Duration != "" {
				if duration, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
					info.Duration = duration
				}
			}
		}
	}

	return info, nil
}
