package generation

import (
	"fmt"
	"strings"

	"github.com/littlehunt-studios/generation-processor/internal/domain/entity"
)

// defaultDurationSeconds applies when a request omits the duration
const defaultDurationSeconds = 5

// BuildInput constructs the provider input payload for a model. Each model
// family has its own parameter schema: key names, duration encodings and
// the set of durations the provider accepts all differ. Requested durations
// are coerced to the nearest value the family supports instead of being
// rejected.
//
// Unknown families get a raw passthrough of the canonical fields, leaving
// validation to the provider.
func BuildInput(modelID, prompt string, durationSeconds int, aspectRatio string) map[string]any {
	if durationSeconds <= 0 {
		durationSeconds = defaultDurationSeconds
	}

	input := map[string]any{"prompt": prompt}

	switch entity.ResolveFamily(modelID) {
	case entity.FamilySora:
		input["duration"] = fmt.Sprintf("%ds", nearest(durationSeconds, 5, 10, 15, 20))
		input["aspect_ratio"] = soraAspect(aspectRatio)

	case entity.FamilyVeo:
		input["duration"] = nearest(durationSeconds, 4, 6, 8)
		input["generate_audio"] = true
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyHailuo:
		seconds := nearest(durationSeconds, 6, 10)
		input["duration"] = seconds
		if isFastVariant(modelID) {
			input["quality"] = "standard"
		} else {
			input["quality"] = "pro"
		}
		// 10-second clips are only served at 768p
		if seconds == 10 {
			input["resolution"] = "768p"
		}

	case entity.FamilyPixverse:
		input["duration"] = nearest(durationSeconds, 5, 8)
		input["resolution"] = "1080p"
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyKling:
		input["duration"] = nearest(durationSeconds, 5, 10)
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilySeedance:
		input["duration"] = nearest(durationSeconds, 5, 10)
		if isLiteVariant(modelID) {
			input["resolution"] = "720p"
		} else {
			input["resolution"] = "1080p"
		}
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyWan:
		input["duration"] = nearest(durationSeconds, 5, 10)
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyRayFlash:
		input["duration"] = nearest(durationSeconds, 5, 9)
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyRay:
		input["duration"] = fmt.Sprintf("%ds", nearest(durationSeconds, 5, 9))
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}

	case entity.FamilyMinimax:
		// Frame-based control at 30fps; no duration or aspect keys
		if durationSeconds <= 5 {
			input["num_frames"] = 150
		} else {
			input["num_frames"] = 300
		}

	case entity.FamilyMochi:
		input["num_frames"] = 163

	default:
		input["duration"] = durationSeconds
		if aspectRatio != "" {
			input["aspect_ratio"] = aspectRatio
		}
	}

	return input
}

// soraAspect maps a width:height ratio onto the orientation keywords the
// provider expects. Everything that isn't explicitly vertical is landscape.
func soraAspect(aspectRatio string) string {
	switch aspectRatio {
	case "9:16", "portrait":
		return "portrait"
	default:
		return "landscape"
	}
}

// nearest returns the option closest to value, preferring the smaller
// option on ties. Options must be sorted ascending.
func nearest(value int, options ...int) int {
	best := options[0]
	bestDistance := abs(value - best)
	for _, opt := range options[1:] {
		if d := abs(value - opt); d < bestDistance {
			best = opt
			bestDistance = d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func isFastVariant(modelID string) bool {
	return strings.HasSuffix(modelID, "-fast")
}

func isLiteVariant(modelID string) bool {
	return strings.HasSuffix(modelID, "-lite")
}
