package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/options"
)

// ProgressSink receives transfer-progress events for one download. Progress
// carries downloaded and total (or estimated total) bytes; PostProcessing
// fires once the transfer is done and the tool is muxing or re-encoding.
type ProgressSink interface {
	Progress(downloaded, total int64)
	PostProcessing()
}

// DownloadResult is the metadata reported by the tool on success.
type DownloadResult struct {
	Title    string
	Duration float64
}

// Downloader streams one remote URL to a local file.
type Downloader interface {
	Download(ctx context.Context, url, outputTemplate string, plan options.Plan, sink ProgressSink) (*DownloadResult, error)
}

// YtdlpDownloader drives the yt-dlp binary. Retries and the socket timeout
// are configured per attempt at the tool level; callers get one Download
// call per job.
type YtdlpDownloader struct {
	cfg    config.ToolsConfig
	logger *logrus.Logger
}

func NewYtdlpDownloader(cfg config.ToolsConfig) *YtdlpDownloader {
	return &YtdlpDownloader{
		cfg:    cfg,
		logger: logrus.StandardLogger(),
	}
}

// Install fetches the yt-dlp binary when it is not already on PATH.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return errors.Internal("tools.Install", err, "failed to install yt-dlp")
	}
	return nil
}

func (d *YtdlpDownloader) Download(
	ctx context.Context,
	url, outputTemplate string,
	plan options.Plan,
	sink ProgressSink,
) (*DownloadResult, error) {
	const op = "YtdlpDownloader.Download"

	dl := ytdlp.New().
		Format(plan.FormatSelector).
		Output(outputTemplate).
		NoPlaylist().
		NoCheckCertificates().
		GeoBypass().
		SocketTimeout(d.cfg.SocketTimeout.Seconds()).
		Retries(strconv.Itoa(d.cfg.YtdlpRetries))

	if plan.MergeFormat != "" {
		dl = dl.MergeOutputFormat(plan.MergeFormat)
	}
	if plan.ExtractAudio {
		dl = dl.ExtractAudio().
			AudioFormat(plan.AudioFormat).
			AudioQuality(fmt.Sprintf("%dK", plan.AudioKbps))
	}
	for key, value := range plan.Headers {
		dl = dl.AddHeaders(key + ":" + value)
	}

	dl.ProgressFunc(d.cfg.ProgressEventHz, func(update ytdlp.ProgressUpdate) {
		switch update.Status {
		case ytdlp.ProgressStatusDownloading:
			sink.Progress(int64(update.DownloadedBytes), int64(update.TotalBytes))
		case ytdlp.ProgressStatusPostProcessing, ytdlp.ProgressStatusFinished:
			sink.PostProcessing()
		}
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		diagnostic := err.Error()
		if result != nil && result.Stderr != "" {
			diagnostic = result.Stderr
		}
		d.logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err,
		}).Error("yt-dlp run failed")
		return nil, errors.ToolFailed(op, err, excerpt(diagnostic))
	}

	res := &DownloadResult{}
	if info, err := result.GetExtractedInfo(); err == nil && len(info) > 0 {
		if info[0].Title != nil {
			res.Title = *info[0].Title
		}
		if info[0].Duration != nil {
			res.Duration = *info[0].Duration
		}
	}

	return res, nil
}
