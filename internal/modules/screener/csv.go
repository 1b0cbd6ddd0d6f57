package screener

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/relval/internal/domain"
)

// screenHeader is the fixed column order of the screen results file.
var screenHeader = []string{
	"CompanyName", "Ticker", "Sector",
	"QuantScore", "QualScore", "CatalystScore", "OrderScore", "GovScore",
	"ValuationScore", "AdjValuationScore", "DividendYield",
	"Decision", "DecisionRationale",
	"PassedFactors", "RiskFlags", "ScenarioTriggers", "CatalystTriggers",
	"AvgDailyValue", "Turnaround",
	"TechScore", "Trend", "RSI", "VolMultiplier",
	"PortfolioScore", "AdjPortfolioScore", "LiquidityCap", "TargetWeight",
}

// WriteScreen writes one row per security, overwriting any previous
// cycle's file.
func WriteScreen(path string, securities []*domain.Security) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screen file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(screenHeader); err != nil {
		return fmt.Errorf("failed to write screen header: %w", err)
	}

	for _, sec := range securities {
		row := []string{
			sec.CompanyName, sec.Ticker, sec.Sector,
			ff(sec.QuantScore), ff(sec.QualScore), ff(sec.CatalystScore), ff(sec.OrderScore), ff(sec.GovScore),
			ff(sec.ValuationScore), ff(sec.AdjValuation), fp(sec.DividendYield),
			sec.Decision, sec.DecisionRationale,
			strings.Join(sec.PassedFactors, "; "), strings.Join(sec.RiskFlags, "; "),
			strings.Join(sec.ScenarioTriggers, "; "), strings.Join(sec.CatalystTriggers, "; "),
			fp(sec.AvgDailyValue), strconv.FormatBool(sec.Turnaround),
			ff(sec.TechScore), sec.Trend, ff(sec.RSI), ff(sec.VolMultiplier),
			ff(sec.PortfolioScore), ff(sec.AdjPortfolioScore), ff(sec.LiquidityCap), ff(sec.TargetWeight),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write screen row for %s: %w", sec.Ticker, err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadScreen loads a previously written screen results file. The
// reconciler and backtester consume ticker, weight and decision fields.
func ReadScreen(path string) ([]*domain.Security, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screen file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse screen file: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	required := []string{"Ticker", "TargetWeight"}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("screen file missing column %s", name)
		}
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	getF := func(row []string, name string) float64 {
		v, _ := strconv.ParseFloat(get(row, name), 64)
		return v
	}

	var securities []*domain.Security
	for _, row := range rows[1:] {
		sec := &domain.Security{
			CompanyName:       get(row, "CompanyName"),
			Ticker:            get(row, "Ticker"),
			Sector:            get(row, "Sector"),
			QuantScore:        getF(row, "QuantScore"),
			QualScore:         getF(row, "QualScore"),
			CatalystScore:     getF(row, "CatalystScore"),
			OrderScore:        getF(row, "OrderScore"),
			GovScore:          getF(row, "GovScore"),
			ValuationScore:    getF(row, "ValuationScore"),
			AdjValuation:      getF(row, "AdjValuationScore"),
			TechScore:         getF(row, "TechScore"),
			Trend:             get(row, "Trend"),
			RSI:               getF(row, "RSI"),
			VolMultiplier:     getF(row, "VolMultiplier"),
			PortfolioScore:    getF(row, "PortfolioScore"),
			AdjPortfolioScore: getF(row, "AdjPortfolioScore"),
			LiquidityCap:      getF(row, "LiquidityCap"),
			TargetWeight:      getF(row, "TargetWeight"),
			Decision:          get(row, "Decision"),
			DecisionRationale: get(row, "DecisionRationale"),
			Turnaround:        get(row, "Turnaround") == "true",
		}
		if yield := get(row, "DividendYield"); yield != "" {
			if v, err := strconv.ParseFloat(yield, 64); err == nil {
				sec.DividendYield = &v
			}
		}
		if adv := get(row, "AvgDailyValue"); adv != "" {
			if v, err := strconv.ParseFloat(adv, 64); err == nil {
				sec.AvgDailyValue = &v
			}
		}
		if sec.Ticker != "" {
			securities = append(securities, sec)
		}
	}

	return securities, nil
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fp(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
