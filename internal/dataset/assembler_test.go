package dataset

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/miradorstack/mirador-predict/internal/generator"
	"github.com/miradorstack/mirador-predict/internal/models"
	"github.com/miradorstack/mirador-predict/internal/topology"
)

func testSpecs(topo *topology.ServiceTopology) []Spec {
	return []Spec{
		{Generator: generator.NewNormal(topo), Count: 300},
		{Generator: generator.NewDegraded(topo), Count: 200},
		{Generator: generator.NewCascade(topo, "database"), Count: 250},
		{Generator: generator.NewNearFailure(topo, "database"), Count: 200},
	}
}

func TestAssembleCounts(t *testing.T) {
	topo := topology.Default()
	ds, err := Assemble(context.Background(), topo, testSpecs(topo), 42)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(ds.Rows) != 950 {
		t.Fatalf("expected 950 rows, got %d", len(ds.Rows))
	}
	if ds.Schema.Len() != 31 {
		t.Fatalf("unexpected schema size: %d", ds.Schema.Len())
	}
	// Cascade alone guarantees at least 250 positives out of 950.
	if rate := ds.PositiveRate(); rate < 0.25 || rate > 0.75 {
		t.Fatalf("implausible positive rate: %v", rate)
	}
}

func TestStratifiedSplitPreservesRatio(t *testing.T) {
	topo := topology.Default()
	ds, err := Assemble(context.Background(), topo, testSpecs(topo), 7)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	train, test := ds.StratifiedSplit(0.2, 7)
	if len(train)+len(test) != len(ds.Rows) {
		t.Fatalf("split lost rows: %d + %d != %d", len(train), len(test), len(ds.Rows))
	}

	rate := func(rows []models.ScenarioRow) float64 {
		pos := 0
		for _, r := range rows {
			if r.Label == 1 {
				pos++
			}
		}
		return float64(pos) / float64(len(rows))
	}

	overall := ds.PositiveRate()
	if math.Abs(rate(train)-overall) > 0.02 {
		t.Fatalf("train ratio drifted: %v vs %v", rate(train), overall)
	}
	if math.Abs(rate(test)-overall) > 0.03 {
		t.Fatalf("test ratio drifted: %v vs %v", rate(test), overall)
	}
}

func TestWriteCSV(t *testing.T) {
	topo := topology.Default()
	ds, err := Assemble(context.Background(), topo, []Spec{
		{Generator: generator.NewNormal(topo), Count: 10},
	}, 1)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	path := filepath.Join(t.TempDir(), "train.csv")
	if err := WriteCSV(path, ds.Schema, ds.Rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 11 {
		t.Fatalf("expected header + 10 rows, got %d", len(records))
	}
	header := records[0]
	if header[0] != "hour_of_day" || header[len(header)-1] != models.LabelColumn {
		t.Fatalf("unexpected header framing: %v", header)
	}
	if len(header) != ds.Schema.Len()+1 {
		t.Fatalf("unexpected column count: %d", len(header))
	}
	for i, rec := range records[1:] {
		if rec[len(rec)-1] != "0" {
			t.Fatalf("row %d: normal rows must carry label 0, got %s", i, rec[len(rec)-1])
		}
	}
}
