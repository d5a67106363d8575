package options

import (
	"github.com/clydeeshun94/vinogram-motherhen/errors"
)

// Audio share reserved out of the size budget, and the floor below which the
// video stream is not worth encoding.
const (
	audioReserveKbps = 128
	minVideoKbps     = 500
)

// PlanBitrate estimates the video bitrate in kbps needed to hit a target
// output size. A single constant-quality pass can overshoot this; callers
// that need accuracy run two-pass encoding at the returned rate.
func PlanBitrate(durationSeconds float64, targetSizeMB int) (int, error) {
	const op = "options.PlanBitrate"

	if durationSeconds <= 0 {
		return 0, errors.InvalidDuration(op, nil, "input duration must be positive")
	}

	targetKb := float64(targetSizeMB) * 1024
	kbps := int(targetKb*8/durationSeconds) - audioReserveKbps
	if kbps < minVideoKbps {
		kbps = minVideoKbps
	}

	return kbps, nil
}
