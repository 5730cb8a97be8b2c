package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-synthesis/analysis"
	"github.com/cwbudde/algo-synthesis/synth"
	"github.com/cwbudde/mayfly"
)

type fitConfig struct {
	base       synth.Instrument
	defs       []knobDef
	init       candidate
	reference  []float64
	sampleRate int
	frequency  float64
	duration   float64
	synthCfg   *synth.Config

	seed        int64
	timeBudget  time.Duration
	maxEvals    int
	reportEvery int
	topK        int
	workers     int

	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
}

type topCandidate struct {
	Eval    int                `json:"eval"`
	Score   float64            `json:"score"`
	Metrics analysis.Metrics   `json:"metrics"`
	Knobs   map[string]float64 `json:"knobs"`
}

type fitResult struct {
	best    candidate
	metrics analysis.Metrics
	top     []topCandidate
	evals   int
	rounds  int
	elapsed time.Duration
}

type fitState struct {
	mu      sync.Mutex
	best    candidate
	metrics analysis.Metrics
	top     []topCandidate
}

func evaluateCandidate(cfg *fitConfig, c candidate) analysis.Metrics {
	inst := applyCandidate(cfg.base, cfg.defs, c)
	s := synth.NewSampler(inst, cfg.sampleRate, cfg.synthCfg)
	out := s.Sample(cfg.duration, cfg.frequency)
	return analysis.Compare(cfg.reference, out, cfg.sampleRate)
}

// runFit runs independent Mayfly rounds on cfg.workers goroutines until the
// evaluation or time budget is spent.
func runFit(cfg *fitConfig) (*fitResult, error) {
	if len(cfg.defs) == 0 {
		return nil, fmt.Errorf("nothing to fit")
	}
	variant := strings.ToLower(cfg.mayflyVariant)
	if _, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), 1); err != nil {
		return nil, err
	}
	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	deadline := start.Add(cfg.timeBudget)
	state := &fitState{best: cloneCandidate(cfg.init)}
	state.metrics = evaluateCandidate(cfg, cfg.init)
	state.top = updateTopCandidates(nil, cfg.topK, 0, state.metrics, cfg.defs, cfg.init)
	fmt.Printf("Initial score=%.4f sim=%.2f%%\n", state.metrics.Score, state.metrics.Similarity*100.0)

	var evals, rounds, improves int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if time.Now().After(deadline) || atomic.LoadInt64(&evals) >= int64(cfg.maxEvals) {
					return
				}
				round := atomic.AddInt64(&rounds, 1)
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return
				}
				budget := min(cfg.mayflyRoundEvals, remaining)
				iters := max(1, budget/(2*cfg.mayflyPop))

				mcfg, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
					return
				}
				mcfg.Rand = rand.New(rand.NewSource(cfg.seed + round*7919))
				mcfg.ObjectiveFunc = func(pos []float64) float64 {
					if time.Now().After(deadline) {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}
					cand := fromNormalized(pos, cfg.defs)
					m := evaluateCandidate(cfg, cand)

					state.mu.Lock()
					state.top = updateTopCandidates(state.top, cfg.topK, int(evalNum), m, cfg.defs, cand)
					improved := m.Score < state.metrics.Score
					if improved {
						state.best = cloneCandidate(cand)
						state.metrics = m
					}
					bestScore := state.metrics.Score
					state.mu.Unlock()

					if improved {
						n := atomic.AddInt64(&improves, 1)
						fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%% dominant=%s\n", n, evalNum, m.Score, m.Similarity*100.0, m.Dominant)
					}
					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.4f\n", evalNum, cfg.maxEvals, time.Since(start).Seconds(), bestScore)
					}
					return m.Score
				}
				if _, err := runMayfly(mcfg); err != nil {
					fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	return &fitResult{
		best:    cloneCandidate(state.best),
		metrics: state.metrics,
		top:     append([]topCandidate(nil), state.top...),
		evals:   int(atomic.LoadInt64(&evals)),
		rounds:  int(atomic.LoadInt64(&rounds)),
		elapsed: time.Since(start),
	}, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *fitState) float64 {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.metrics.Score
}

func updateTopCandidates(top []topCandidate, topK int, eval int, m analysis.Metrics, defs []knobDef, c candidate) []topCandidate {
	if topK < 1 {
		return top
	}
	top = append(top, topCandidate{Eval: eval, Score: m.Score, Metrics: m, Knobs: knobsMap(defs, c)})
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score < top[j].Score })
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}
