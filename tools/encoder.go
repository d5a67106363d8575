package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/options"
)

const (
	videoCodec = "libx264"
	audioCodec = "aac"
)

// Encoder rewrites a local file into another under the plan's quality or
// bitrate constraint.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputPath string, plan options.Plan) error
}

type FFmpegEncoder struct {
	cfg    config.ToolsConfig
	runner Runner
	logger *logrus.Logger
}

func NewFFmpegEncoder(cfg config.ToolsConfig, runner Runner) *FFmpegEncoder {
	return &FFmpegEncoder{
		cfg:    cfg,
		runner: runner,
		logger: logrus.StandardLogger(),
	}
}

// Encode runs a single constant-quality pass, or two rate-controlled passes
// when the plan carries a target bitrate. Partial output and pass logs are
// removed before an error is surfaced.
func (e *FFmpegEncoder) Encode(ctx context.Context, inputPath, outputPath string, plan options.Plan) error {
	var err error
	if plan.TwoPass() {
		err = e.encodeTwoPass(ctx, inputPath, outputPath, plan)
	} else {
		err = e.encodeSinglePass(ctx, inputPath, outputPath, plan)
	}

	if err != nil {
		os.Remove(outputPath)
		return err
	}
	return nil
}

func (e *FFmpegEncoder) encodeSinglePass(ctx context.Context, inputPath, outputPath string, plan options.Plan) error {
	const op = "FFmpegEncoder.encodeSinglePass"

	args := singlePassArgs(inputPath, outputPath, plan)
	output, err := e.runner.Run(ctx, e.cfg.FFmpegPath, args...)
	if err != nil {
		e.logger.WithError(err).Error("ffmpeg encode failed")
		return errors.ToolFailed(op, err, excerpt(string(output)))
	}
	return nil
}

func (e *FFmpegEncoder) encodeTwoPass(ctx context.Context, inputPath, outputPath string, plan options.Plan) error {
	const op = "FFmpegEncoder.encodeTwoPass"

	// Per-output pass log so concurrent encodes never share analysis state.
	passLog := outputPath + ".passlog"
	defer removePassLogs(passLog)

	output, err := e.runner.Run(ctx, e.cfg.FFmpegPath, firstPassArgs(inputPath, passLog, plan)...)
	if err != nil {
		e.logger.WithError(err).Error("ffmpeg first pass failed")
		return errors.ToolFailed(op, err, excerpt(string(output)))
	}

	output, err = e.runner.Run(ctx, e.cfg.FFmpegPath, secondPassArgs(inputPath, outputPath, passLog, plan)...)
	if err != nil {
		e.logger.WithError(err).Error("ffmpeg second pass failed")
		return errors.ToolFailed(op, err, excerpt(string(output)))
	}
	return nil
}

func singlePassArgs(inputPath, outputPath string, plan options.Plan) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", videoCodec,
		"-crf", fmt.Sprintf("%d", plan.Preset.CRF),
		"-preset", plan.Preset.Speed,
		"-c:a", audioCodec,
		"-b:a", plan.Preset.AudioBitrate,
		outputPath,
	}
}

func firstPassArgs(inputPath, passLog string, plan options.Plan) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", videoCodec,
		"-b:v", fmt.Sprintf("%dk", plan.TargetVideoKbps),
		"-preset", plan.Preset.Speed,
		"-pass", "1",
		"-passlogfile", passLog,
		"-an",
		"-f", "null",
		os.DevNull,
	}
}

func secondPassArgs(inputPath, outputPath, passLog string, plan options.Plan) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", videoCodec,
		"-b:v", fmt.Sprintf("%dk", plan.TargetVideoKbps),
		"-preset", plan.Preset.Speed,
		"-pass", "2",
		"-passlogfile", passLog,
		"-c:a", audioCodec,
		"-b:a", plan.Preset.AudioBitrate,
		outputPath,
	}
}

func removePassLogs(passLog string) {
	matches, err := filepath.Glob(passLog + "*")
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}
