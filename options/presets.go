package options

// Preset bundles the encoder parameters behind a named compression level.
// CRF trades size for quality (higher = smaller), Speed is the libx264
// preset knob, AudioBitrate feeds -b:a.
type Preset struct {
	Level        string
	CRF          int
	Speed        string
	AudioBitrate string
}

var presets = map[string]Preset{
	"low":    {Level: "low", CRF: 28, Speed: "fast", AudioBitrate: "64k"},
	"medium": {Level: "medium", CRF: 23, Speed: "medium", AudioBitrate: "128k"},
	"high":   {Level: "high", CRF: 18, Speed: "slow", AudioBitrate: "192k"},
}

// audioBitrates maps the download quality tier to the target kbps used when
// extracting and re-encoding audio.
var audioBitrates = map[string]int{
	"low":    128,
	"medium": 192,
	"high":   320,
}

// videoHeights maps the download quality tier to the resolution ceiling.
var videoHeights = map[string]int{
	"low":    480,
	"medium": 720,
	"high":   1080,
}
