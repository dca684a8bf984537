// Package scenario defines the simulation configuration surface: network
// shape, media mix, word-of-mouth parameters, influencer settings, and run
// controls, with defaults, bounds checking, and file loading.
package scenario

// NetworkKind selects the topology generator.
type NetworkKind string

const (
	NetworkRandom     NetworkKind = "er" // Erdős–Rényi random graph
	NetworkSmallWorld NetworkKind = "ws" // Watts–Strogatz small world
	NetworkScaleFree  NetworkKind = "ba" // Barabási–Albert scale free
)

// Valid reports whether the kind names a known generator.
func (k NetworkKind) Valid() bool {
	switch k {
	case NetworkRandom, NetworkSmallWorld, NetworkScaleFree:
		return true
	}
	return false
}

// NetworkConfig holds topology generation parameters.
type NetworkConfig struct {
	Kind NetworkKind `json:"type" yaml:"type"`
	N    int         `json:"n" yaml:"n"`       // Node count
	K    int         `json:"k" yaml:"k"`       // Target average degree
	Beta float64     `json:"beta" yaml:"beta"` // Rewiring probability (small world only)
}

// ChannelKind identifies one of the three paid-media channels.
type ChannelKind uint8

const (
	ChannelSNS ChannelKind = iota
	ChannelVideo
	ChannelSearch
)

// NumChannels is the number of media channels in a mix.
const NumChannels = 3

// String returns the channel's wire name.
func (c ChannelKind) String() string {
	switch c {
	case ChannelSNS:
		return "sns"
	case ChannelVideo:
		return "video"
	case ChannelSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Channel is one paid-media channel's budget share and effect coefficient.
type Channel struct {
	Share float64 `json:"share" yaml:"share"` // Budget share, 0–1
	Alpha float64 `json:"alpha" yaml:"alpha"` // Effect coefficient, 0–1
}

// MediaMixConfig is the three-channel paid-media plan. Shares must sum to 1.
type MediaMixConfig struct {
	SNS    Channel `json:"sns" yaml:"sns"`
	Video  Channel `json:"video" yaml:"video"`
	Search Channel `json:"search" yaml:"search"`
}

// Channels returns the mix in fixed activation order (sns, video, search).
func (m MediaMixConfig) Channels() [NumChannels]Channel {
	return [NumChannels]Channel{m.SNS, m.Video, m.Search}
}

// ShareSum returns the total budget share across channels.
func (m MediaMixConfig) ShareSum() float64 {
	return m.SNS.Share + m.Video.Share + m.Search.Share
}

// WoMConfig controls word-of-mouth generation and forgetting.
type WoMConfig struct {
	PGenerate         float64 `json:"p_generate" yaml:"p_generate"` // Base generation probability
	Decay             float64 `json:"decay" yaml:"decay"`           // Forgetting decay factor
	PersonalityWeight float64 `json:"personality_weight" yaml:"personality_weight"`
	DemographicWeight float64 `json:"demographic_weight" yaml:"demographic_weight"`
}

// InfluencerConfig controls the influencer sub-population.
type InfluencerConfig struct {
	Enabled    bool    `json:"enable_influencers" yaml:"enable_influencers"`
	Ratio      float64 `json:"influencer_ratio" yaml:"influencer_ratio"`       // Population share, 0–0.1
	Multiplier float64 `json:"influence_multiplier" yaml:"influence_multiplier"` // Influence amplification, 1–10
}

// PersonalityConfig holds population-level trait midpoints. The spawner draws
// per-agent traits from per-archetype distributions; these values travel with
// the scenario for reporting and round-tripping.
type PersonalityConfig struct {
	Openness        float64 `json:"openness" yaml:"openness"`
	SocialInfluence float64 `json:"social_influence" yaml:"social_influence"`
	MediaAffinity   float64 `json:"media_affinity" yaml:"media_affinity"`
	RiskTolerance   float64 `json:"risk_tolerance" yaml:"risk_tolerance"`
}

// DemographicConfig holds population-level demographic midpoints, carried for
// the same reason as PersonalityConfig.
type DemographicConfig struct {
	AgeGroup       int     `json:"age_group" yaml:"age_group"`             // 1=18-24 … 5=55+
	IncomeLevel    int     `json:"income_level" yaml:"income_level"`       // 1=very low … 5=very high
	UrbanRural     float64 `json:"urban_rural" yaml:"urban_rural"`         // 0=rural … 1=urban
	EducationLevel int     `json:"education_level" yaml:"education_level"` // 1=elementary … 5=graduate
}

// Config aggregates everything a simulation run needs.
type Config struct {
	Name         string            `json:"name" yaml:"name"`
	Network      NetworkConfig     `json:"network" yaml:"network"`
	Media        MediaMixConfig    `json:"media_mix" yaml:"media_mix"`
	WoM          WoMConfig         `json:"wom" yaml:"wom"`
	Personality  PersonalityConfig `json:"personality" yaml:"personality"`
	Demographics DemographicConfig `json:"demographics" yaml:"demographics"`
	Influencers  InfluencerConfig  `json:"influencers" yaml:"influencers"`
	Steps        int               `json:"steps" yaml:"steps"` // Simulation days
	Reps         int               `json:"reps" yaml:"reps"`   // Independent repetitions
	Seed         uint64            `json:"seed" yaml:"seed"`   // 0 = use DefaultSeed
}

// DefaultSeed is used when a scenario omits its seed. Randomness never falls
// back to wall-clock entropy.
const DefaultSeed = 42

// Default returns the baseline scenario configuration.
func Default() Config {
	return Config{
		Name: "Baseline A",
		Network: NetworkConfig{
			Kind: NetworkSmallWorld,
			N:    10000,
			K:    6,
			Beta: 0.1,
		},
		Media: MediaMixConfig{
			SNS:    Channel{Share: 0.5, Alpha: 0.03},
			Video:  Channel{Share: 0.3, Alpha: 0.02},
			Search: Channel{Share: 0.2, Alpha: 0.01},
		},
		WoM: WoMConfig{
			PGenerate:         0.08,
			Decay:             0.9,
			PersonalityWeight: 0.3,
			DemographicWeight: 0.2,
		},
		Personality: PersonalityConfig{
			Openness:        0.5,
			SocialInfluence: 0.5,
			MediaAffinity:   0.5,
			RiskTolerance:   0.5,
		},
		Demographics: DemographicConfig{
			AgeGroup:       3,
			IncomeLevel:    3,
			UrbanRural:     0.5,
			EducationLevel: 3,
		},
		Influencers: InfluencerConfig{
			Enabled:    true,
			Ratio:      0.02,
			Multiplier: 3.0,
		},
		Steps: 60,
		Reps:  10,
		Seed:  DefaultSeed,
	}
}

// SmallTest returns a small configuration for rapid iteration.
func SmallTest() Config {
	cfg := Default()
	cfg.Name = "Small Test"
	cfg.Network.N = 200
	cfg.Network.K = 6
	cfg.Steps = 30
	cfg.Reps = 2
	cfg.Seed = 7
	return cfg
}

// Normalize fills derivable gaps without touching explicit values. Currently
// that is only the seed fallback.
func (c *Config) Normalize() {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
}
