package sequencer

import (
	"context"
	"runtime"

	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-synthesis/synth"
)

// Track is the rendered audio of one pitch row.
type Track struct {
	Row       int
	Frequency float64
	Samples   []float64
}

// GenerateTrack renders inputs back to back, one sampler call per input.
func GenerateTrack(ctx context.Context, bpm float64, sampler *synth.Sampler, inputs []Input) ([]float64, error) {
	spb := SamplesPerBeat(bpm, sampler.SampleRate())
	total := 0
	for _, in := range inputs {
		if in.BeatCount > 0 {
			total += in.BeatCount * spb
		}
	}
	out := make([]float64, 0, total)
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := sampler.SampleFramesContext(ctx, in.BeatCount*spb, in.Frequency)
		if err != nil {
			return nil, err
		}
		out = append(out, run...)
	}
	return out, nil
}

// GenerateTracks renders every non-empty row of the grid. Rows are rendered
// concurrently on up to workers goroutines (GOMAXPROCS when workers <= 0) and
// returned in ascending row order.
func GenerateTracks(ctx context.Context, p Pattern, g Grid, sampler *synth.Sampler, workers int) ([]Track, error) {
	rows := p.Inputs(g, sampler.Config().Tuning)
	if len(rows) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tracks := make([]Track, len(rows))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, row := range rows {
		eg.Go(func() error {
			samples, err := GenerateTrack(ctx, p.BPM, sampler, row.Inputs)
			if err != nil {
				return err
			}
			tracks[i] = Track{Row: row.Row, Frequency: row.Frequency, Samples: samples}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Mix sums the tracks and divides by their count. Shorter tracks are padded
// with silence.
func Mix(tracks []Track) []float64 {
	if len(tracks) == 0 {
		return []float64{}
	}
	n := 0
	for _, tr := range tracks {
		if len(tr.Samples) > n {
			n = len(tr.Samples)
		}
	}
	out := make([]float64, n)
	for _, tr := range tracks {
		vek.Add_Inplace(out[:len(tr.Samples)], tr.Samples)
	}
	vek.DivNumber_Inplace(out, float64(len(tracks)))
	return out
}
