package features

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/miradorstack/mirador-predict/internal/topology"
)

// Schema is the fixed, ordered list of feature names a trained model
// expects. Order is a load-bearing contract: a vector built in any other
// order silently corrupts every prediction, so the schema is persisted
// next to the model and reloaded verbatim at serving time.
type Schema struct {
	names []string
	index map[string]int
}

// New builds a Schema from an ordered name list. Duplicate names are
// rejected because they would make the index ambiguous.
func New(names []string) (*Schema, error) {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("feature %d: empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		index[name] = i
	}
	return &Schema{names: append([]string(nil), names...), index: index}, nil
}

// ForTopology returns the canonical training-time schema for a topology:
// time features, then each service's metrics in topology order, then the
// derived topology features. This matches the column order the dataset
// assembler writes.
func ForTopology(topo *topology.ServiceTopology) *Schema {
	names := []string{"hour_of_day", "is_peak_hour", "is_weekend"}
	for _, svc := range topo.Services() {
		prefix := topology.FeaturePrefix(svc)
		for _, metric := range []string{"cpu", "memory", "latency", "availability", "error_rate", "throughput"} {
			names = append(names, prefix+"_"+metric)
		}
	}
	names = append(names,
		"dependency_health_score",
		"cascade_risk",
		"slo_violation_count",
		"critical_path_latency",
	)
	schema, err := New(names)
	if err != nil {
		// Names are generated from a deduplicated service list; a clash
		// here means the topology itself is malformed.
		panic(err)
	}
	return schema
}

// Load reads a newline-delimited feature file, one name per line,
// order-significant. Blank lines are skipped.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature schema: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feature schema: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("feature schema %s is empty", path)
	}
	return New(names)
}

// Save writes the schema in the same newline-delimited format Load reads.
func (s *Schema) Save(path string) error {
	var b strings.Builder
	for _, name := range s.names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write feature schema: %w", err)
	}
	return nil
}

// Names returns the ordered feature names.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of features.
func (s *Schema) Len() int { return len(s.names) }

// Index returns the position of a feature name, or -1 when unknown.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Vectorize places each input value at the schema index matching its name,
// regardless of map iteration order. Keys not in the schema are ignored.
// Schema features absent from the input default to 0.0 and are returned in
// missing (schema order) so callers can surface the gap instead of hiding
// it behind a silent zero.
func (s *Schema) Vectorize(input map[string]float64) (vector []float64, missing []string) {
	vector = make([]float64, len(s.names))
	for i, name := range s.names {
		value, ok := input[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vector[i] = value
	}
	return vector, missing
}
