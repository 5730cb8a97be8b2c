package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-synthesis/internal/wavio"
	"github.com/cwbudde/algo-synthesis/synth"
)

type knobField int

const (
	fieldMultiplier knobField = iota
	fieldFeedback
	fieldFade
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
	// Log maps the normalised position exponentially between Min and Max.
	Log bool

	field knobField
	osc   int
	stage int
}

type candidate struct {
	Vals []float64
}

// parseFitGroups parses a comma-separated string of group names.
// Valid groups: multiplier, feedback, fade.
func parseFitGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{"multiplier": true, "feedback": true, "fade": true}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown fit group %q (valid: multiplier, feedback, fade)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no fit groups specified")
	}
	return groups, nil
}

// initCandidate lists one knob per fitted stage field, seeded from base.
func initCandidate(base synth.Instrument, groups map[string]bool, integerRatios bool) ([]knobDef, candidate) {
	var defs []knobDef
	var vals []float64
	for i, o := range base.Oscillators {
		for j, w := range o.Waveforms {
			if groups["multiplier"] {
				defs = append(defs, knobDef{
					Name:  fmt.Sprintf("osc%d.stage%d.multiplier", i, j),
					Min:   0.25,
					Max:   16,
					IsInt: integerRatios,
					Log:   !integerRatios,
					field: fieldMultiplier,
					osc:   i,
					stage: j,
				})
				vals = append(vals, w.Multiplier)
			}
			if groups["feedback"] {
				defs = append(defs, knobDef{
					Name:  fmt.Sprintf("osc%d.stage%d.feedback", i, j),
					Min:   0,
					Max:   12,
					field: fieldFeedback,
					osc:   i,
					stage: j,
				})
				vals = append(vals, w.Feedback)
			}
		}
	}
	if groups["fade"] {
		defs = append(defs, knobDef{Name: "fade", Min: 0, Max: 12, field: fieldFade})
		vals = append(vals, base.Fade)
	}
	for i := range vals {
		vals[i] = quantize(defs[i], wavio.Clamp(vals[i], defs[i].Min, defs[i].Max))
	}
	return defs, candidate{Vals: vals}
}

func quantize(def knobDef, v float64) float64 {
	if def.IsInt {
		v = math.Max(math.Round(v), math.Ceil(def.Min))
	}
	return v
}

func toNormalized(c candidate, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, def := range defs {
		v := c.Vals[i]
		if def.Log {
			pos[i] = math.Log(v/def.Min) / math.Log(def.Max/def.Min)
		} else {
			pos[i] = (v - def.Min) / (def.Max - def.Min)
		}
		pos[i] = wavio.Clamp(pos[i], 0, 1)
	}
	return pos
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, def := range defs {
		p := wavio.Clamp(pos[i], 0, 1)
		var v float64
		if def.Log {
			v = def.Min * math.Pow(def.Max/def.Min, p)
		} else {
			v = def.Min + p*(def.Max-def.Min)
		}
		vals[i] = quantize(def, v)
	}
	return candidate{Vals: vals}
}

// applyCandidate returns a copy of base with the knob values written into
// their stages. Fade knobs also enable the global fade.
func applyCandidate(base synth.Instrument, defs []knobDef, c candidate) synth.Instrument {
	inst := base.Clone()
	for i, def := range defs {
		v := c.Vals[i]
		switch def.field {
		case fieldMultiplier:
			inst.Oscillators[def.osc].Waveforms[def.stage].Multiplier = v
		case fieldFeedback:
			inst.Oscillators[def.osc].Waveforms[def.stage].Feedback = v
		case fieldFade:
			inst.Fade = v
			inst.FadeEnabled = true
		}
	}
	return inst
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}

func formatCandidate(defs []knobDef, c candidate) string {
	var b strings.Builder
	for i, def := range defs {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%.4g", def.Name, c.Vals[i])
	}
	return b.String()
}
