package synth

const (
	// PreviewSampleRate and PreviewFrequency size the editor's waveform
	// thumbnail: one second of a 10 Hz note at 500 Hz gives ten visible
	// cycles in 500 points.
	PreviewSampleRate = 500
	PreviewFrequency  = 10.0
	PreviewDuration   = 1.0

	// EditorSampleRate is the rate used when auditioning in the editor.
	EditorSampleRate = 22000
	auditionOctave   = 3
	auditionDuration = 1.0
)

// Preview renders the buffer shown as the instrument's waveform.
func Preview(inst Instrument, cfg *Config) []float64 {
	return NewSampler(inst, PreviewSampleRate, cfg).Sample(PreviewDuration, PreviewFrequency)
}

// Audition renders the one second A3 the editor plays for the instrument.
func Audition(inst Instrument, cfg *Config) []float64 {
	c := resolveConfig(cfg)
	return NewSampler(inst, EditorSampleRate, &c).Sample(auditionDuration, c.Tuning.Frequency(A, auditionOctave, 0))
}
