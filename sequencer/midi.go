package sequencer

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerBeat is the resolution of exported MIDI files.
const TicksPerBeat = 960

const (
	midiChannel  = 0
	midiVelocity = 100
)

type midiEvent struct {
	tick uint32
	on   bool
	key  uint8
}

// WriteMIDI exports the grid as a single-track Standard MIDI File, one
// quarter note per active cell. Cells whose key falls outside 0..127 are
// skipped.
func WriteMIDI(w io.Writer, p Pattern, g Grid) error {
	if p.BPM <= 0 {
		return fmt.Errorf("bpm must be > 0")
	}
	var events []midiEvent
	for _, c := range g.Cells() {
		if c.Beat < 0 || c.Beat >= p.Beats || c.Row < 0 || c.Row >= p.Rows {
			continue
		}
		key := p.BaseNote.MIDI(p.Octave, c.Row)
		if key < 0 || key > 127 {
			continue
		}
		start := uint32(c.Beat) * TicksPerBeat
		events = append(events,
			midiEvent{tick: start, on: true, key: uint8(key)},
			midiEvent{tick: start + TicksPerBeat, on: false, key: uint8(key)},
		)
	}
	// Note-offs sort before note-ons on the same tick so repeated cells
	// retrigger instead of overlapping.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick == events[j].tick {
			return !events[i].on && events[j].on
		}
		return events[i].tick < events[j].tick
	})

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(p.BPM))
	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		last = ev.tick
		if ev.on {
			tr.Add(delta, midi.NoteOn(midiChannel, ev.key, midiVelocity))
		} else {
			tr.Add(delta, midi.NoteOff(midiChannel, ev.key))
		}
	}
	end := uint32(p.Beats) * TicksPerBeat
	var tail uint32
	if end > last {
		tail = end - last
	}
	tr.Close(tail)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerBeat)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}
