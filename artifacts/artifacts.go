// Package artifacts locates job output files on disk. The external tool
// chooses the file extension, so lookup is a glob on the job id.
package artifacts

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
)

// Temp files yt-dlp leaves next to an in-flight download.
var skippedExtensions = []string{".part", ".ytdl"}

// Locate returns the path of the job's output file inside dir, or NotFound.
// One job produces one file; multiple matches indicate a data-integrity
// problem and are logged before the first match is returned.
func Locate(dir, jobID string) (string, error) {
	const op = "artifacts.Locate"

	matches, err := filepath.Glob(filepath.Join(dir, jobID+".*"))
	if err != nil {
		return "", errors.Internal(op, err, "artifact lookup failed")
	}

	var files []string
	for _, m := range matches {
		if isTempFile(m) {
			continue
		}
		files = append(files, m)
	}

	if len(files) == 0 {
		return "", errors.NotFound(op, nil, "artifact not found")
	}
	if len(files) > 1 {
		logrus.WithFields(logrus.Fields{
			"job_id":  jobID,
			"matches": len(files),
		}).Warn("multiple artifacts for one job, returning first")
	}

	return files[0], nil
}

// Remove deletes every artifact and temp file matching the job id.
// Best effort: missing files are not an error.
func Remove(dir, jobID string) {
	matches, err := filepath.Glob(filepath.Join(dir, jobID+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}

func isTempFile(path string) bool {
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
