package scenario

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/whatif-futures/internal/analytics"
	"github.com/yourusername/whatif-futures/internal/metrics"
	"github.com/yourusername/whatif-futures/internal/models"
)

// MaxScenarios caps the number of non-baseline scenarios held per portfolio
const MaxScenarios = 10

// Scenario bundles one simulation run. Immutable after creation.
type Scenario struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	IsBaseline bool              `json:"is_baseline"`
	Params     Parameters        `json:"params"`
	Trades     []*models.Trade   `json:"trades"`
	Metrics    analytics.Metrics `json:"metrics"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewBaseline builds the baseline scenario from the original recorded
// trades. The baseline is never resimulated or resized; only metrics run.
func NewBaseline(trades []*models.Trade, startingCapital float64) *Scenario {
	return &Scenario{
		ID:         uuid.New(),
		Name:       "Baseline (Actual)",
		IsBaseline: true,
		Params:     DefaultParameters(),
		Trades:     trades,
		Metrics:    analytics.CalculateAllMetrics(trades, startingCapital),
		CreatedAt:  time.Now().UTC(),
	}
}

// NewScenario runs the simulator and bundles the result
func (s *Simulator) NewScenario(name string, params Parameters, trades []*models.Trade, candles []*models.Candle, startingCapital float64) (*Scenario, error) {
	modified, metrics, err := s.ApplyScenario(trades, candles, params, startingCapital)
	if err != nil {
		return nil, err
	}
	return &Scenario{
		ID:        uuid.New(),
		Name:      name,
		Params:    params,
		Trades:    modified,
		Metrics:   metrics,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Book holds the bounded scenario collection for one portfolio: the pinned
// baseline plus at most MaxScenarios what-if runs. Completed runs are cached
// by parameter hash since simulation is deterministic.
type Book struct {
	mu        sync.RWMutex
	baseline  *Scenario
	scenarios []*Scenario
	results   *cache.Cache
}

// NewBook creates an empty scenario book
func NewBook(cacheTTL time.Duration) *Book {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &Book{results: cache.New(cacheTTL, cacheTTL*2)}
}

// SetBaseline installs or replaces the baseline scenario
func (b *Book) SetBaseline(baseline *Scenario) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.baseline = baseline
}

// Baseline returns the pinned baseline, or nil when none is loaded
func (b *Book) Baseline() *Scenario {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseline
}

// Add appends a non-baseline scenario, enforcing the collection cap
func (b *Book) Add(s *Scenario) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.scenarios) >= MaxScenarios {
		return models.ErrScenarioLimit
	}
	b.scenarios = append(b.scenarios, s)
	return nil
}

// Remove deletes a scenario by name. The baseline is protected.
func (b *Book) Remove(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.baseline != nil && b.baseline.Name == name {
		return models.ErrBaselineProtected
	}
	for i, s := range b.scenarios {
		if s.Name == name {
			b.scenarios = append(b.scenarios[:i], b.scenarios[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// List returns the baseline followed by all what-if scenarios
func (b *Book) List() []*Scenario {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Scenario, 0, len(b.scenarios)+1)
	if b.baseline != nil {
		out = append(out, b.baseline)
	}
	return append(out, b.scenarios...)
}

// Run executes a scenario through the cache: identical parameter sets reuse
// the previous result instead of re-walking candles.
func (b *Book) Run(sim *Simulator, name string, params Parameters, trades []*models.Trade, candles []*models.Candle, startingCapital float64) (*Scenario, error) {
	key := params.Hash()
	if cached, found := b.results.Get(key); found {
		if prior, ok := cached.(*Scenario); ok {
			rerun := *prior
			rerun.ID = uuid.New()
			rerun.Name = name
			rerun.CreatedAt = time.Now().UTC()
			if err := b.Add(&rerun); err != nil {
				return nil, err
			}
			metrics.RecordScenarioCacheHit()
			metrics.UpdateScenariosHeld(b.Count())
			return &rerun, nil
		}
	}

	started := time.Now()
	s, err := sim.NewScenario(name, params, trades, candles, startingCapital)
	if err != nil {
		return nil, err
	}
	if err := b.Add(s); err != nil {
		return nil, err
	}
	b.results.Set(key, s, cache.DefaultExpiration)

	metrics.RecordScenarioRun(time.Since(started).Seconds())
	metrics.RecordTradesSimulated(len(s.Trades))
	metrics.UpdateScenariosHeld(b.Count())
	return s, nil
}

// Count returns the number of non-baseline scenarios held
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scenarios)
}
