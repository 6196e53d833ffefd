package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"tollcalc/internal/table"
	"tollcalc/internal/toll"
	"tollcalc/internal/traffic"
)

// GeneratorConfig controls the shape of the synthetic datasets.
type GeneratorConfig struct {
	Scenario     string // "mild" or "busy"
	Distribution string // "uniform" or "weibull"
	Count        int    // number of ids per dataset
	Seed         uint64
}

// Datasets holds one relation per input file the analyses consume.
type Datasets struct {
	Counts    *table.Relation
	Intervals *table.Relation
	Edges     *table.Relation
	Trips     *table.Relation
}

const (
	firstCountID = 801
	firstEdgeID  = 1001400
	edgeIDStep   = 2
)

var (
	routes   = []string{"A", "B", "C", "D", "E"}
	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	// coverageStart is a Monday so the seven interval rows land on seven distinct dates.
	coverageStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Validate rejects scenario and distribution names the generator does not know.
func (cfg GeneratorConfig) Validate() error {
	switch cfg.Scenario {
	case "mild", "busy":
	default:
		return fmt.Errorf("unknown scenario %q (want mild or busy)", cfg.Scenario)
	}
	switch cfg.Distribution {
	case "uniform", "weibull":
	default:
		return fmt.Errorf("unknown distribution %q (want uniform or weibull)", cfg.Distribution)
	}
	return nil
}

// Generate builds the four datasets. The same config always yields the same data.
func Generate(cfg GeneratorConfig) Datasets {
	if cfg.Count < 2 {
		cfg.Count = 2
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	g := &generator{cfg: cfg, rng: rng}

	return Datasets{
		Counts:    g.counts(),
		Intervals: g.intervals(),
		Edges:     g.edges(),
		Trips:     g.trips(),
	}
}

type generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// volume draws a vehicle count around the scenario's typical level.
func (g *generator) volume(base float64) int64 {
	if g.cfg.Scenario == "busy" {
		base *= 1.8
	}
	var v float64
	if g.cfg.Distribution == "weibull" {
		v = weibullSample(g.rng, 2.0, base)
	} else {
		v = base * (0.3 + g.rng.Float64()*1.4)
	}
	return int64(math.Round(v))
}

func (g *generator) counts() *table.Relation {
	rel := table.New(traffic.ColID1, traffic.ColID2, traffic.ColRoute, "moto", traffic.ColCar, "rv", traffic.ColBus, traffic.ColTruck)
	for i := 0; i < g.cfg.Count; i++ {
		for j := 0; j < g.cfg.Count; j++ {
			if i == j {
				continue
			}
			// Sparse pairs leave holes in the car matrix.
			if g.rng.Float64() < 0.2 {
				continue
			}
			rel.Append(
				int64(firstCountID+i),
				int64(firstCountID+j),
				routes[g.rng.IntN(len(routes))],
				g.volume(4),
				g.volume(20),
				g.volume(3),
				g.volume(6),
				g.volume(7),
			)
		}
	}
	return rel
}

func (g *generator) intervals() *table.Relation {
	rel := table.New(traffic.ColID, traffic.ColID2, traffic.ColStartDay, traffic.ColStartTime, traffic.ColEndDay, traffic.ColEndTime)
	for i := 0; i < g.cfg.Count; i++ {
		id := int64(firstEdgeID + i*edgeIDStep)
		id2 := int64(-1 - i)
		complete := g.rng.Float64() < 0.7
		gap := g.rng.IntN(len(weekdays))

		for d := range weekdays {
			start := coverageStart.AddDate(0, 0, d)
			end := start.Add(7 * 24 * time.Hour)
			if !complete && d == gap {
				end = start.Add(time.Duration(1+g.rng.IntN(23)) * time.Hour)
			}
			rel.Append(id, id2,
				start.Format(time.DateOnly), start.Format(time.TimeOnly),
				end.Format(time.DateOnly), end.Format(time.TimeOnly))
		}
	}
	return rel
}

func (g *generator) edges() *table.Relation {
	rel := table.New(toll.ColIDStart, toll.ColIDEnd, toll.ColDistance)
	for i := 0; i+1 < g.cfg.Count; i++ {
		d := 5 + g.rng.Float64()*20
		rel.Append(
			int64(firstEdgeID+i*edgeIDStep),
			int64(firstEdgeID+(i+1)*edgeIDStep),
			math.Round(d*10)/10,
		)
	}
	return rel
}

func (g *generator) trips() *table.Relation {
	rel := table.New(toll.ColIDStart, toll.ColIDEnd, toll.ColDistance,
		toll.ColStartDay, toll.ColStartTime, toll.ColEndDay, toll.ColEndTime)
	for i := 0; i < g.cfg.Count; i++ {
		a := g.rng.IntN(g.cfg.Count)
		b := g.rng.IntN(g.cfg.Count)
		if a == b {
			b = (b + 1) % g.cfg.Count
		}
		day := g.rng.IntN(len(weekdays))
		start := time.Duration(g.rng.IntN(20*3600)) * time.Second
		end := start + time.Duration(600+g.rng.IntN(3*3600))*time.Second
		rel.Append(
			int64(firstEdgeID+a*edgeIDStep),
			int64(firstEdgeID+b*edgeIDStep),
			math.Round((5+g.rng.Float64()*60)*10)/10,
			weekdays[day], table.FormatClock(start),
			weekdays[day], table.FormatClock(end),
		)
	}
	return rel
}

// weibullSample draws from Weibull(k, lambda) by inverting the CDF.
func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	return lambda * math.Pow(-math.Log(1-u), 1/k)
}

// Files names each dataset on disk.
var Files = []struct {
	Name string
	Get  func(Datasets) *table.Relation
}{
	{"dataset-1.csv", func(d Datasets) *table.Relation { return d.Counts }},
	{"dataset-2.csv", func(d Datasets) *table.Relation { return d.Intervals }},
	{"dataset-3.csv", func(d Datasets) *table.Relation { return d.Edges }},
	{"trips.csv", func(d Datasets) *table.Relation { return d.Trips }},
}

// Save writes every dataset as CSV into dir.
func Save(dir string, ds Datasets) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, f := range Files {
		path := filepath.Join(dir, f.Name)
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := f.Get(ds).WriteCSV(out); err != nil {
			out.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}
