package entity

import "strings"

// ModelFamily is a class of generation models sharing one parameter schema.
// The family is resolved once from the model id via exact lookup with a
// prefix fallback; parameter construction then switches over the family.
type ModelFamily string

// Model families
const (
	FamilySora     ModelFamily = "sora"
	FamilyVeo      ModelFamily = "veo"
	FamilyHailuo   ModelFamily = "hailuo"
	FamilyPixverse ModelFamily = "pixverse"
	FamilyKling    ModelFamily = "kling"
	FamilySeedance ModelFamily = "seedance"
	FamilyWan      ModelFamily = "wan"
	FamilyRayFlash ModelFamily = "ray-flash"
	FamilyRay      ModelFamily = "ray"
	FamilyMinimax  ModelFamily = "minimax"
	FamilyMochi    ModelFamily = "mochi"
	FamilyUnknown  ModelFamily = "unknown"
)

// ProviderName identifies which upstream service serves a family
type ProviderName string

// Providers
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderReplicate ProviderName = "replicate"
)

// ModelSpec describes the invocation properties of a model family
type ModelSpec struct {
	Family   ModelFamily
	Provider ProviderName
	// StrictFilter marks families whose content filter rejects prompts
	// that most other models accept; moderation rejections on these
	// families get one transparent retry against FallbackModel.
	StrictFilter bool
}

// familyByModel holds exact model-id to family mappings for every model
// in the pricing table
var familyByModel = map[string]ModelFamily{
	"openai/sora-2-pro":            FamilySora,
	"openai/sora-2":                FamilySora,
	"google/veo-3.1":               FamilyVeo,
	"google/veo-3.1-fast":          FamilyVeo,
	"google/veo-3":                 FamilyVeo,
	"google/veo-3-fast":            FamilyVeo,
	"minimax/hailuo-02":            FamilyHailuo,
	"minimax/hailuo-02-fast":       FamilyHailuo,
	"pixverse/pixverse-v5":         FamilyPixverse,
	"pixverse/pixverse-v4.5":       FamilyPixverse,
	"pixverse/pixverse-v4":         FamilyPixverse,
	"kwaivgi/kling-v2.5-turbo-pro": FamilyKling,
	"kwaivgi/kling-v2.1-master":    FamilyKling,
	"kwaivgi/kling-v2.1":           FamilyKling,
	"kwaivgi/kling-v1.6-pro":       FamilyKling,
	"kwaivgi/kling-v1.6-standard":  FamilyKling,
	"bytedance/seedance-1-pro":     FamilySeedance,
	"bytedance/seedance-1-lite":    FamilySeedance,
	"wan-video/wan-2.5-t2v":        FamilyWan,
	"wan-video/wan-2.5-t2v-fast":   FamilyWan,
	"luma/ray-flash-2-720p":        FamilyRayFlash,
	"luma/ray-flash-2-540p":        FamilyRayFlash,
	"luma/ray":                     FamilyRay,
	"minimax/video-01-director":    FamilyMinimax,
	"minimax/video-01":             FamilyMinimax,
	"genmo/mochi-1-preview":        FamilyMochi,
}

// familyPrefixes resolves families for model ids added to a provider after
// this table was written. Order matters: more specific prefixes first.
var familyPrefixes = []struct {
	prefix string
	family ModelFamily
}{
	{"openai/sora", FamilySora},
	{"google/veo", FamilyVeo},
	{"minimax/hailuo", FamilyHailuo},
	{"pixverse/", FamilyPixverse},
	{"kwaivgi/kling", FamilyKling},
	{"bytedance/seedance", FamilySeedance},
	{"wan-video/", FamilyWan},
	{"luma/ray-flash", FamilyRayFlash},
	{"luma/", FamilyRay},
	{"minimax/", FamilyMinimax},
	{"genmo/mochi", FamilyMochi},
}

// ResolveFamily maps a model id onto its family. Exact table match first,
// then prefix fallback, then FamilyUnknown (raw passthrough of canonical
// fields).
func ResolveFamily(modelID string) ModelFamily {
	if family, ok := familyByModel[modelID]; ok {
		return family
	}
	for _, p := range familyPrefixes {
		if strings.HasPrefix(modelID, p.prefix) {
			return p.family
		}
	}
	return FamilyUnknown
}

// ResolveModel returns the full invocation spec for a model id
func ResolveModel(modelID string) ModelSpec {
	family := ResolveFamily(modelID)
	spec := ModelSpec{Family: family, Provider: ProviderReplicate}

	switch family {
	case FamilySora:
		spec.Provider = ProviderOpenAI
		spec.StrictFilter = true
	case FamilyVeo:
		spec.StrictFilter = true
	}

	return spec
}

// DefaultFallbackModel is the relaxed-filter model used for the single
// moderation-rejection retry on strict-filter families
const DefaultFallbackModel = "minimax/video-01"
