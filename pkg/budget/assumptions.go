package budget

import (
	"github.com/iwvelando/commerce-analytics/pkg/constants"
)

// Assumptions are the business policy inputs of the projection and the
// search parameters of the optimiser.
type Assumptions struct {
	COGSRate        float64 `json:"cogsRate" yaml:"cogsRate"`
	PlatformFeeRate float64 `json:"platformFeeRate" yaml:"platformFeeRate"`

	// Default is used when neither the channel nor FallbackChannel has history.
	Default ChannelMetrics `json:"default" yaml:"default"`

	// Placeholders hold fixed metrics for channels without a data source.
	// Recorded history for the channel still takes precedence.
	Placeholders map[string]ChannelMetrics `json:"placeholders" yaml:"placeholders"`

	FallbackChannel string `json:"fallbackChannel" yaml:"fallbackChannel"`

	// Channels is the ordered channel set the optimiser distributes over.
	Channels []string `json:"channels" yaml:"channels"`

	Step      float64 `json:"step" yaml:"step"`
	MaxRounds int     `json:"maxRounds" yaml:"maxRounds"`
	RoundCap  int     `json:"roundCap" yaml:"roundCap"`
}

// DefaultAssumptions returns 40% COGS, 8% platform fees, a TikTok
// placeholder and a 500 step search over meta, google and tiktok.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		COGSRate:        constants.COGSRate,
		PlatformFeeRate: constants.PlatformFeeRate,
		Default:         ChannelMetrics{ROAS: constants.DefaultROAS, CPA: constants.DefaultCPA},
		Placeholders: map[string]ChannelMetrics{
			constants.ChannelTikTok: {ROAS: constants.TikTokROAS, CPA: constants.TikTokCPA},
		},
		FallbackChannel: constants.ChannelGoogle,
		Channels:        []string{constants.ChannelMeta, constants.ChannelGoogle, constants.ChannelTikTok},
		Step:            constants.OptimizerStep,
		MaxRounds:       constants.OptimizerMaxRounds,
		RoundCap:        constants.OptimizerRoundCap,
	}
}

// withDefaults fills unset fields from DefaultAssumptions. Zero rates are
// kept.
func (a Assumptions) withDefaults() Assumptions {
	d := DefaultAssumptions()
	if a.COGSRate < 0 {
		a.COGSRate = d.COGSRate
	}
	if a.PlatformFeeRate < 0 {
		a.PlatformFeeRate = d.PlatformFeeRate
	}
	if a.Default.ROAS <= 0 {
		a.Default.ROAS = d.Default.ROAS
	}
	if a.Default.CPA <= 0 {
		a.Default.CPA = d.Default.CPA
	}
	if a.Placeholders == nil {
		a.Placeholders = d.Placeholders
	}
	if a.FallbackChannel == "" {
		a.FallbackChannel = d.FallbackChannel
	}
	if len(a.Channels) == 0 {
		a.Channels = d.Channels
	}
	if a.Step <= 0 {
		a.Step = d.Step
	}
	if a.MaxRounds <= 0 {
		a.MaxRounds = d.MaxRounds
	}
	if a.RoundCap <= 0 {
		a.RoundCap = d.RoundCap
	}
	return a
}
