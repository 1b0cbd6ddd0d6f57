package trading

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// tradeLogHeader is the fixed column order of the append-only log.
var tradeLogHeader = []string{"Timestamp", "Ticker", "Action", "Quantity", "ExecutionPrice", "SignalType", "TrailingStopPct"}

// TradeRecord is one transmitted order.
type TradeRecord struct {
	Timestamp   time.Time
	Ticker      string
	Action      string
	Quantity    float64
	Price       float64
	SignalType  string
	TrailingPct *float64
}

// TradeLog appends transmitted orders to a CSV file. The header row is
// written once when the file is created.
type TradeLog struct {
	path string
	now  func() time.Time
}

// NewTradeLog creates a trade log writing to the given path.
func NewTradeLog(path string) *TradeLog {
	return &TradeLog{path: path, now: time.Now}
}

// Append writes one record. The file is opened per call so the log
// survives crashes between cycles.
func (tl *TradeLog) Append(record TradeRecord) error {
	_, statErr := os.Stat(tl.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(tl.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trade log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(tradeLogHeader); err != nil {
			return fmt.Errorf("failed to write trade log header: %w", err)
		}
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = tl.now()
	}
	trailing := "N/A"
	if record.TrailingPct != nil {
		trailing = strconv.FormatFloat(*record.TrailingPct, 'f', 2, 64)
	}

	row := []string{
		record.Timestamp.Format(time.RFC3339),
		record.Ticker,
		record.Action,
		strconv.FormatFloat(record.Quantity, 'f', -1, 64),
		strconv.FormatFloat(record.Price, 'f', -1, 64),
		record.SignalType,
		trailing,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write trade log row: %w", err)
	}

	w.Flush()
	return w.Error()
}

// ReadAll returns every logged record, oldest first. A missing file is
// an empty log, not an error.
func (tl *TradeLog) ReadAll() ([]TradeRecord, error) {
	f, err := os.Open(tl.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trade log: %w", err)
	}

	var records []TradeRecord
	for i, row := range rows {
		if i == 0 || len(row) < 7 {
			continue
		}

		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			continue
		}
		qty, _ := strconv.ParseFloat(row[3], 64)
		price, _ := strconv.ParseFloat(row[4], 64)

		record := TradeRecord{
			Timestamp:  ts,
			Ticker:     row[1],
			Action:     row[2],
			Quantity:   qty,
			Price:      price,
			SignalType: row[5],
		}
		if row[6] != "N/A" {
			if pct, err := strconv.ParseFloat(row[6], 64); err == nil {
				record.TrailingPct = &pct
			}
		}
		records = append(records, record)
	}

	return records, nil
}
