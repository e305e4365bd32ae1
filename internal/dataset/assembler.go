// Package dataset assembles scenario-generator output into a training set:
// concatenation, feature-schema derivation, stratified splitting, and CSV
// persistence.
package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/generator"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Spec pairs a generator with the number of rows to draw from it.
type Spec struct {
	Generator generator.Generator
	Count     int
}

// Dataset is the assembled example set plus the ordered schema derived
// from it. Row order is whatever the workers produced; downstream
// correctness never depends on it.
type Dataset struct {
	Schema *features.Schema
	Rows   []models.ScenarioRow
}

// Assemble draws rows from every spec and concatenates them. Generation is
// embarrassingly parallel (rows share nothing but read-only topology and
// constants), so each spec's count is fanned out across workers, each with
// its own seeded source.
func Assemble(ctx context.Context, topo *topology.ServiceTopology, specs []Spec, seed int64) (*Dataset, error) {
	total := 0
	for _, spec := range specs {
		if spec.Count < 0 {
			return nil, fmt.Errorf("generator %s: negative count %d", spec.Generator.Name(), spec.Count)
		}
		total += spec.Count
	}

	rows := make([]models.ScenarioRow, 0, total)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	g.SetLimit(workers)

	workerSeed := seed
	for _, spec := range specs {
		remaining := spec.Count
		batch := spec.Count/workers + 1
		for remaining > 0 {
			n := batch
			if n > remaining {
				n = remaining
			}
			remaining -= n

			gen := spec.Generator
			src := rand.NewSource(workerSeed)
			workerSeed++

			g.Go(func() error {
				rng := rand.New(src)
				out := make([]models.ScenarioRow, 0, n)
				for i := 0; i < n; i++ {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
					out = append(out, gen.Row(rng))
				}
				mu.Lock()
				rows = append(rows, out...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dataset{
		Schema: features.ForTopology(topo),
		Rows:   rows,
	}, nil
}

// PositiveRate returns the fraction of rows labelled as incidents.
func (d *Dataset) PositiveRate() float64 {
	if len(d.Rows) == 0 {
		return 0
	}
	positives := 0
	for _, row := range d.Rows {
		if row.Label == 1 {
			positives++
		}
	}
	return float64(positives) / float64(len(d.Rows))
}

// StratifiedSplit partitions the rows into train and test sets, preserving
// the overall positive/negative ratio in both. testFraction is clamped to
// (0,1); rows are shuffled within each class before the cut.
func (d *Dataset) StratifiedSplit(testFraction float64, seed int64) (train, test []models.ScenarioRow) {
	if testFraction <= 0 {
		testFraction = 0.2
	}
	if testFraction >= 1 {
		testFraction = 0.2
	}

	var positives, negatives []models.ScenarioRow
	for _, row := range d.Rows {
		if row.Label == 1 {
			positives = append(positives, row)
		} else {
			negatives = append(negatives, row)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	split := func(class []models.ScenarioRow) {
		rng.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })
		cut := int(float64(len(class)) * testFraction)
		test = append(test, class[:cut]...)
		train = append(train, class[cut:]...)
	}
	split(negatives)
	split(positives)
	return train, test
}
