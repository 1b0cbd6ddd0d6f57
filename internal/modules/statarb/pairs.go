// Package statarb turns a precomputed cointegrated-pair table into
// entry and exit ticker sets by scoring each pair's spread z-score.
package statarb

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/relval/internal/domain"
)

// LoadPairs reads the cointegrated pair table produced by the offline
// scan. Expected columns: asset_1, asset_2, p_value, hedge_ratio. A
// header row is detected and skipped.
func LoadPairs(path string) ([]domain.PairRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse pairs file: %w", err)
	}

	var pairs []domain.PairRecord
	for i, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("pairs file row %d: expected 4 columns, got %d", i+1, len(row))
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}

		pValue, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("pairs file row %d: bad p-value %q: %w", i+1, row[2], err)
		}
		hedge, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("pairs file row %d: bad hedge ratio %q: %w", i+1, row[3], err)
		}

		pairs = append(pairs, domain.PairRecord{
			Asset1:     strings.TrimSpace(row[0]),
			Asset2:     strings.TrimSpace(row[1]),
			PValue:     pValue,
			HedgeRatio: hedge,
		})
	}

	return pairs, nil
}

func isHeaderRow(row []string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	return err != nil
}
