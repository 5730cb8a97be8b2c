package synth

// Config holds the tunables shared by every sampler built from it.
type Config struct {
	// AttackPopFraction and DecayPopFraction size the anti-pop ramps as a
	// fraction of the sample rate.
	AttackPopFraction float64
	DecayPopFraction  float64

	// PopShaping disables both ramps when false.
	PopShaping bool

	// Tuning is the reference frequency of A4 used to resolve notes.
	Tuning Tuning

	// Strict makes the context-aware sampling calls reject non-finite
	// frequencies with ErrNonFinite instead of rendering NaN/Inf.
	Strict bool
}

// NewDefaultConfig creates the configuration used by the editor.
func NewDefaultConfig() *Config {
	return &Config{
		AttackPopFraction: 0.002,
		DecayPopFraction:  0.01,
		PopShaping:        true,
		Tuning:            DefaultTuning,
		Strict:            false,
	}
}

func resolveConfig(cfg *Config) Config {
	if cfg == nil {
		return *NewDefaultConfig()
	}
	c := *cfg
	if c.AttackPopFraction < 0 {
		c.AttackPopFraction = 0
	}
	if c.DecayPopFraction < 0 {
		c.DecayPopFraction = 0
	}
	if c.Tuning <= 0 {
		c.Tuning = DefaultTuning
	}
	return c
}
