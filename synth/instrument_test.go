package synth

import "testing"

func TestNewInstrumentDefaults(t *testing.T) {
	inst := NewInstrument("Instrument")
	if inst.ID == "" || inst.Name != "Instrument" {
		t.Fatalf("unexpected identity: %+v", inst)
	}
	if len(inst.Oscillators) != 1 || len(inst.Oscillators[0].Waveforms) != 1 {
		t.Fatalf("expected one oscillator with one stage, got %+v", inst.Oscillators)
	}
	w := inst.Oscillators[0].Waveforms[0]
	if w.Waveform != Sine || w.Multiplier != 1 || w.Feedback != 1 || w.ID == "" {
		t.Fatalf("unexpected default stage: %+v", w)
	}
	if inst.FadeEnabled {
		t.Fatalf("fade should start disabled")
	}
}

func TestEditsDoNotMutateReceiver(t *testing.T) {
	base := NewInstrument("base")
	oscID := base.Oscillators[0].ID
	waveID := base.Oscillators[0].Waveforms[0].ID

	edited := base.
		AddWaveform(oscID).
		UpdateWaveform(oscID, waveID, Cosine, 2.5, 0.3).
		AddOscillator().
		Rename("edited")

	if len(base.Oscillators) != 1 || len(base.Oscillators[0].Waveforms) != 1 {
		t.Fatalf("base instrument was mutated: %+v", base)
	}
	if base.Oscillators[0].Waveforms[0].Waveform != Sine || base.Name != "base" {
		t.Fatalf("base stage was mutated: %+v", base.Oscillators[0].Waveforms[0])
	}
	if len(edited.Oscillators) != 2 || len(edited.Oscillators[0].Waveforms) != 2 {
		t.Fatalf("edits not applied: %+v", edited)
	}
	w := edited.Oscillators[0].Waveforms[0]
	if w.ID != waveID || w.Waveform != Cosine || w.Multiplier != 2.5 || w.Feedback != 0.3 {
		t.Fatalf("update did not keep identity or values: %+v", w)
	}
	if edited.Name != "edited" {
		t.Fatalf("rename failed: %q", edited.Name)
	}
}

func TestReorderWaveformsMovesStage(t *testing.T) {
	osc := stack(stage(Sine, 1, 0), stage(Sine, 2, 0), stage(Sine, 3, 0))
	inst := instrumentOf(osc)
	moved := inst.ReorderWaveforms(osc.ID, 0, 2)
	got := moved.Oscillators[0].Waveforms
	want := []float64{2, 3, 1}
	for i := range want {
		if got[i].Multiplier != want[i] {
			t.Fatalf("order after move: got %v at %d want %v", got[i].Multiplier, i, want[i])
		}
	}
	back := moved.ReorderWaveforms(osc.ID, 2, 0)
	for i, w := range back.Oscillators[0].Waveforms {
		if w.ID != osc.Waveforms[i].ID {
			t.Fatalf("moving back should restore order at %d", i)
		}
	}
	same := inst.ReorderWaveforms(osc.ID, 0, 7)
	for i, w := range same.Oscillators[0].Waveforms {
		if w.ID != osc.Waveforms[i].ID {
			t.Fatalf("out-of-range move should be a no-op")
		}
	}
	if inst.Oscillators[0].Waveforms[0].Multiplier != 1 {
		t.Fatalf("reorder mutated the receiver")
	}
}

func TestRemoveAndDelete(t *testing.T) {
	osc := stack(stage(Sine, 1, 0), stage(Cosine, 2, 0), stage(Sine, 3, 0))
	other := stack(stage(Sine, 1, 0))
	inst := instrumentOf(osc, other)

	last := inst.RemoveWaveform(osc.ID)
	if n := len(last.Oscillators[0].Waveforms); n != 2 || last.Oscillators[0].Waveforms[1].Multiplier != 2 {
		t.Fatalf("RemoveWaveform should drop the last stage, got %+v", last.Oscillators[0].Waveforms)
	}
	mid := inst.RemoveWaveformByID(osc.ID, osc.Waveforms[1].ID)
	if ws := mid.Oscillators[0].Waveforms; len(ws) != 2 || ws[1].Multiplier != 3 {
		t.Fatalf("RemoveWaveformByID removed the wrong stage: %+v", ws)
	}
	empty := instrumentOf(stack()).RemoveWaveform("missing")
	if len(empty.Oscillators[0].Waveforms) != 0 {
		t.Fatalf("removing from an unknown oscillator should be a no-op")
	}
	gone := inst.DeleteOscillator(osc.ID)
	if len(gone.Oscillators) != 1 || gone.Oscillators[0].ID != other.ID {
		t.Fatalf("DeleteOscillator removed the wrong oscillator: %+v", gone.Oscillators)
	}
	if len(inst.Oscillators) != 2 || len(inst.Oscillators[0].Waveforms) != 3 {
		t.Fatalf("receiver mutated: %+v", inst)
	}
}

func TestCloneSharesNoSlices(t *testing.T) {
	inst := instrumentOf(stack(stage(Sine, 1, 0)))
	c := inst.Clone()
	c.Oscillators[0].Waveforms[0].Multiplier = 9
	if inst.Oscillators[0].Waveforms[0].Multiplier != 1 {
		t.Fatalf("clone aliases the stage slice")
	}
	if _, ok := inst.Oscillator(inst.Oscillators[0].ID); !ok {
		t.Fatalf("Oscillator lookup failed")
	}
}
