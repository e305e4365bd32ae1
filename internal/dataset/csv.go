package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/models"
)

// WriteCSV persists rows as a delimited table: one column per schema
// feature, in schema order, plus the label column last. Every value is
// looked up by name so the on-disk column order always matches the schema
// regardless of how the row maps iterate.
func WriteCSV(path string, schema *features.Schema, rows []models.ScenarioRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append(schema.Names(), models.LabelColumn)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i, row := range rows {
		vector, _ := schema.Vectorize(row.Features)
		for j, value := range vector {
			record[j] = strconv.FormatFloat(value, 'g', -1, 64)
		}
		record[len(record)-1] = strconv.Itoa(row.Label)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}
