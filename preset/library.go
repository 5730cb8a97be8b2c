package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cwbudde/algo-synthesis/sequencer"
	"github.com/cwbudde/algo-synthesis/synth"
)

// Library is an in-memory instrument store shared by the editor and the
// sequencer. It also keeps the last grid the sequencer was showing.
type Library struct {
	mu          sync.RWMutex
	instruments map[string]synth.Instrument
	input       sequencer.Grid
	subs        map[int]chan []synth.Instrument
	nextSub     int
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{
		instruments: make(map[string]synth.Instrument),
		subs:        make(map[int]chan []synth.Instrument),
	}
}

// LoadDir creates a library from every preset file in dir. Files with other
// extensions are ignored.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	lib := NewLibrary()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := FormatFromPath(path); err != nil {
			continue
		}
		inst, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		lib.Store(inst)
	}
	return lib, nil
}

// Store inserts or replaces an instrument by id.
func (l *Library) Store(inst synth.Instrument) {
	l.mu.Lock()
	l.instruments[inst.ID] = inst.Clone()
	l.notifyLocked()
	l.mu.Unlock()
}

// Get returns the instrument with the given id.
func (l *Library) Get(id string) (synth.Instrument, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	inst, ok := l.instruments[id]
	if !ok {
		return synth.Instrument{}, false
	}
	return inst.Clone(), true
}

// FindByName returns the first instrument, in List order, named name.
func (l *Library) FindByName(name string) (synth.Instrument, error) {
	for _, inst := range l.List() {
		if inst.Name == name {
			return inst, nil
		}
	}
	return synth.Instrument{}, fmt.Errorf("no instrument named %q", name)
}

// List returns all instruments sorted by name, then id.
func (l *Library) List() []synth.Instrument {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// Delete removes the instrument with the given id.
func (l *Library) Delete(id string) {
	l.mu.Lock()
	if _, ok := l.instruments[id]; ok {
		delete(l.instruments, id)
		l.notifyLocked()
	}
	l.mu.Unlock()
}

// Subscribe returns a channel receiving the current list and a new list after
// every change. Slow readers only see the latest list. cancel closes the
// channel.
func (l *Library) Subscribe() (updates <-chan []synth.Instrument, cancel func()) {
	ch := make(chan []synth.Instrument, 1)
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	ch <- l.snapshotLocked()
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			close(ch)
			l.mu.Unlock()
		})
	}
}

// SaveInput remembers the sequencer grid.
func (l *Library) SaveInput(g sequencer.Grid) {
	l.mu.Lock()
	l.input = g
	l.mu.Unlock()
}

// Input returns the last saved grid.
func (l *Library) Input() sequencer.Grid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.input
}

func (l *Library) snapshotLocked() []synth.Instrument {
	out := make([]synth.Instrument, 0, len(l.instruments))
	for _, inst := range l.instruments {
		out = append(out, inst.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (l *Library) notifyLocked() {
	if len(l.subs) == 0 {
		return
	}
	list := l.snapshotLocked()
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- list
	}
}
