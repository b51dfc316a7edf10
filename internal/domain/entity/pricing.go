package entity

// ModelTier classifies a model's cost bracket
type ModelTier string

// Model tiers
const (
	TierPremium  ModelTier = "premium"   // 3 credits
	TierMidRange ModelTier = "mid-range" // 2 credits
	TierBudget   ModelTier = "budget"    // 1 credit
)

// ModelPricingEntry is a static pricing-table row. Read-only, loaded at
// process start, no lifecycle.
type ModelPricingEntry struct {
	Credits     int64
	Tier        ModelTier
	Description string
}

// defaultPricing applies to model ids absent from the table. Unknown models
// fall back to a mid-range cost rather than failing (permissive policy).
var defaultPricing = ModelPricingEntry{Credits: 2, Tier: TierMidRange, Description: "Standard quality"}

// modelPricing maps model id to credit cost and tier.
//
// Premium (3 credits): highest quality, most expensive API costs.
// Mid-range (2 credits): production quality, balanced cost.
// Budget (1 credit): fast/draft quality, lowest cost.
var modelPricing = map[string]ModelPricingEntry{
	// Premium
	"openai/sora-2-pro": {Credits: 3, Tier: TierPremium, Description: "Highest quality with synced audio"},
	"openai/sora-2":     {Credits: 3, Tier: TierPremium, Description: "Professional cinematic quality"},
	"google/veo-3.1":    {Credits: 3, Tier: TierPremium, Description: "Latest Google model with audio"},

	// Mid-range
	"google/veo-3.1-fast":          {Credits: 2, Tier: TierMidRange, Description: "Fast Veo with good quality"},
	"google/veo-3":                 {Credits: 2, Tier: TierMidRange, Description: "Production quality"},
	"google/veo-3-fast":            {Credits: 2, Tier: TierMidRange, Description: "Fast production quality"},
	"pixverse/pixverse-v5":         {Credits: 2, Tier: TierMidRange, Description: "1080p with enhanced motion"},
	"pixverse/pixverse-v4.5":       {Credits: 2, Tier: TierMidRange, Description: "Complex actions in 1080p"},
	"pixverse/pixverse-v4":         {Credits: 2, Tier: TierMidRange, Description: "Reliable 1080p quality"},
	"minimax/hailuo-02":            {Credits: 2, Tier: TierMidRange, Description: "Realistic physics in 1080p"},
	"bytedance/seedance-1-pro":     {Credits: 2, Tier: TierMidRange, Description: "1080p pro quality"},
	"kwaivgi/kling-v2.5-turbo-pro": {Credits: 2, Tier: TierMidRange, Description: "Cinematic depth and motion"},
	"kwaivgi/kling-v2.1-master":    {Credits: 2, Tier: TierMidRange, Description: "1080p master quality"},
	"kwaivgi/kling-v2.1":           {Credits: 2, Tier: TierMidRange, Description: "Balanced quality"},
	"minimax/video-01-director":    {Credits: 2, Tier: TierMidRange, Description: "Director-level control"},
	"minimax/video-01":             {Credits: 2, Tier: TierMidRange, Description: "Frame-based control"},
	"wan-video/wan-2.5-t2v":        {Credits: 2, Tier: TierMidRange, Description: "With audio generation"},

	// Budget
	"luma/ray-flash-2-720p":       {Credits: 1, Tier: TierBudget, Description: "Fast 720p generation"},
	"luma/ray-flash-2-540p":       {Credits: 1, Tier: TierBudget, Description: "Fastest 540p draft quality"},
	"luma/ray":                    {Credits: 1, Tier: TierBudget, Description: "Dream Machine classic"},
	"minimax/hailuo-02-fast":      {Credits: 1, Tier: TierBudget, Description: "Fast 512p quality"},
	"bytedance/seedance-1-lite":   {Credits: 1, Tier: TierBudget, Description: "720p lite quality"},
	"kwaivgi/kling-v1.6-pro":      {Credits: 1, Tier: TierBudget, Description: "Proven 1080p quality"},
	"kwaivgi/kling-v1.6-standard": {Credits: 1, Tier: TierBudget, Description: "Standard quality"},
	"wan-video/wan-2.5-t2v-fast":  {Credits: 1, Tier: TierBudget, Description: "Fast generation"},
	"genmo/mochi-1-preview":       {Credits: 1, Tier: TierBudget, Description: "Preview quality"},
}

// modelDisplayNames maps model ids to human-readable names for the gallery
var modelDisplayNames = map[string]string{
	"openai/sora-2-pro":            "Sora 2 Pro",
	"openai/sora-2":                "Sora 2",
	"google/veo-3.1":               "Veo 3.1",
	"google/veo-3.1-fast":          "Veo 3.1 Fast",
	"google/veo-3":                 "Veo 3",
	"google/veo-3-fast":            "Veo 3 Fast",
	"pixverse/pixverse-v5":         "PixVerse V5",
	"pixverse/pixverse-v4.5":       "PixVerse V4.5",
	"pixverse/pixverse-v4":         "PixVerse V4",
	"minimax/hailuo-02":            "Hailuo 02",
	"minimax/hailuo-02-fast":       "Hailuo 02 Fast",
	"bytedance/seedance-1-pro":     "Seedance 1 Pro",
	"bytedance/seedance-1-lite":    "Seedance 1 Lite",
	"kwaivgi/kling-v2.5-turbo-pro": "Kling V2.5 Turbo Pro",
	"kwaivgi/kling-v2.1-master":    "Kling V2.1 Master",
	"kwaivgi/kling-v2.1":           "Kling V2.1",
	"kwaivgi/kling-v1.6-pro":       "Kling V1.6 Pro",
	"kwaivgi/kling-v1.6-standard":  "Kling V1.6 Standard",
	"minimax/video-01-director":    "MiniMax Video-01 Director",
	"minimax/video-01":             "MiniMax Video-01",
	"wan-video/wan-2.5-t2v":        "Wan 2.5",
	"wan-video/wan-2.5-t2v-fast":   "Wan 2.5 Fast",
	"luma/ray-flash-2-720p":        "Ray Flash 2 720p",
	"luma/ray-flash-2-540p":        "Ray Flash 2 540p",
	"luma/ray":                     "Luma Ray",
	"genmo/mochi-1-preview":        "Mochi 1 Preview",
}

// ImageCredits is the flat cost of a gpt-image-1 generation
const ImageCredits int64 = 1

// ModelCredits returns the credit cost for a model, defaulting to 2 for
// unknown ids
func ModelCredits(modelID string) int64 {
	return ModelPricing(modelID).Credits
}

// ModelPricing returns the pricing entry for a model id, falling back to
// the mid-range default for unknown ids
func ModelPricing(modelID string) ModelPricingEntry {
	if entry, ok := modelPricing[modelID]; ok {
		return entry
	}
	return defaultPricing
}

// ModelDisplayName returns the human-readable name for a model id, or the
// raw id if the model is unknown
func ModelDisplayName(modelID string) string {
	if name, ok := modelDisplayNames[modelID]; ok {
		return name
	}
	return modelID
}

// ModelsByTier lists the model ids in a given cost bracket
func ModelsByTier(tier ModelTier) []string {
	var ids []string
	for id, entry := range modelPricing {
		if entry.Tier == tier {
			ids = append(ids, id)
		}
	}
	return ids
}

// SubscriptionPlan describes the monthly grant attached to a tier
type SubscriptionPlan struct {
	Tier           SubscriptionTier
	Name           string
	MonthlyCredits int64
	PriceUSD       int
}

// subscriptionPlans maps tier to its monthly grant
var subscriptionPlans = map[SubscriptionTier]SubscriptionPlan{
	TierFree:   {Tier: TierFree, Name: "Free", MonthlyCredits: 10, PriceUSD: 0},
	TierPro:    {Tier: TierPro, Name: "Pro", MonthlyCredits: 60, PriceUSD: 29},
	TierStudio: {Tier: TierStudio, Name: "Studio", MonthlyCredits: 250, PriceUSD: 99},
}

// PlanFor returns the subscription plan for a tier, defaulting to free
func PlanFor(tier SubscriptionTier) SubscriptionPlan {
	if plan, ok := subscriptionPlans[tier]; ok {
		return plan
	}
	return subscriptionPlans[TierFree]
}
