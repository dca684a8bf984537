package scenario

import (
	"errors"
	"fmt"
	"math"
)

// Error classes so callers can tell bad topology parameters apart from a bad
// media plan without string matching.
var (
	ErrTopology = errors.New("invalid topology parameters")
	ErrMediaMix = errors.New("invalid media mix")
	ErrParam    = errors.New("parameter out of range")
)

// ShareTolerance is the allowed deviation of the media-mix share sum from 1.
const ShareTolerance = 1e-6

// ConfigError reports a single rejected configuration field.
type ConfigError struct {
	Field  string
	Reason string
	class  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scenario: %s: %s", e.Field, e.Reason)
}

// Unwrap exposes the error class for errors.Is.
func (e *ConfigError) Unwrap() error { return e.class }

func topologyErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), class: ErrTopology}
}

func mediaErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), class: ErrMediaMix}
}

func paramErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), class: ErrParam}
}

// Validate checks every field against its documented bounds. It returns the
// first violation found, wrapped in an error class, and performs no
// simulation work.
func (c *Config) Validate() error {
	if err := c.Network.validate(); err != nil {
		return err
	}
	if err := c.Media.validate(); err != nil {
		return err
	}
	if err := c.WoM.validate(); err != nil {
		return err
	}
	if err := c.Personality.validate(); err != nil {
		return err
	}
	if err := c.Demographics.validate(); err != nil {
		return err
	}
	if err := c.Influencers.validate(); err != nil {
		return err
	}
	if c.Steps < 1 || c.Steps > 365 {
		return paramErr("steps", "must be in [1, 365], got %d", c.Steps)
	}
	if c.Reps < 1 || c.Reps > 100 {
		return paramErr("reps", "must be in [1, 100], got %d", c.Reps)
	}
	return nil
}

func (n *NetworkConfig) validate() error {
	if !n.Kind.Valid() {
		return topologyErr("network.type", "unknown kind %q", string(n.Kind))
	}
	if n.N < 100 || n.N > 100000 {
		return topologyErr("network.n", "must be in [100, 100000], got %d", n.N)
	}
	if n.K < 2 || n.K > 20 {
		return topologyErr("network.k", "must be in [2, 20], got %d", n.K)
	}
	if n.K >= n.N {
		return topologyErr("network.k", "degree %d must be below node count %d", n.K, n.N)
	}
	if n.Beta < 0 || n.Beta > 1 {
		return topologyErr("network.beta", "must be in [0, 1], got %g", n.Beta)
	}
	return nil
}

func (m *MediaMixConfig) validate() error {
	for i, ch := range m.Channels() {
		name := ChannelKind(i).String()
		if ch.Share < 0 || ch.Share > 1 {
			return mediaErr("media_mix."+name+".share", "must be in [0, 1], got %g", ch.Share)
		}
		if ch.Alpha < 0 || ch.Alpha > 1 {
			return mediaErr("media_mix."+name+".alpha", "must be in [0, 1], got %g", ch.Alpha)
		}
	}
	if sum := m.ShareSum(); math.Abs(sum-1) > ShareTolerance {
		return mediaErr("media_mix", "channel shares must sum to 1, got %g", sum)
	}
	return nil
}

func (w *WoMConfig) validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"wom.p_generate", w.PGenerate},
		{"wom.decay", w.Decay},
		{"wom.personality_weight", w.PersonalityWeight},
		{"wom.demographic_weight", w.DemographicWeight},
	} {
		if f.val < 0 || f.val > 1 {
			return paramErr(f.name, "must be in [0, 1], got %g", f.val)
		}
	}
	return nil
}

func (p *PersonalityConfig) validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"personality.openness", p.Openness},
		{"personality.social_influence", p.SocialInfluence},
		{"personality.media_affinity", p.MediaAffinity},
		{"personality.risk_tolerance", p.RiskTolerance},
	} {
		if f.val < 0 || f.val > 1 {
			return paramErr(f.name, "must be in [0, 1], got %g", f.val)
		}
	}
	return nil
}

func (d *DemographicConfig) validate() error {
	for _, f := range []struct {
		name string
		val  int
	}{
		{"demographics.age_group", d.AgeGroup},
		{"demographics.income_level", d.IncomeLevel},
		{"demographics.education_level", d.EducationLevel},
	} {
		if f.val < 1 || f.val > 5 {
			return paramErr(f.name, "must be in [1, 5], got %d", f.val)
		}
	}
	if d.UrbanRural < 0 || d.UrbanRural > 1 {
		return paramErr("demographics.urban_rural", "must be in [0, 1], got %g", d.UrbanRural)
	}
	return nil
}

func (i *InfluencerConfig) validate() error {
	if i.Ratio < 0 || i.Ratio > 0.1 {
		return paramErr("influencers.influencer_ratio", "must be in [0, 0.1], got %g", i.Ratio)
	}
	if i.Multiplier < 1 || i.Multiplier > 10 {
		return paramErr("influencers.influence_multiplier", "must be in [1, 10], got %g", i.Multiplier)
	}
	return nil
}
