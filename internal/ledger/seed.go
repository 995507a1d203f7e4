package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"siuang/internal/core"
)

// SeedEntry is one line of a seed file before an ID is assigned.
type SeedEntry struct {
	Line        int
	Transaction core.Transaction
}

// ParseSeed reads seed lines of the form
//
//	date;category;amount;note;income|expense
//
// Blank lines and lines starting with '#' are ignored. The kind column is
// optional and defaults to expense.
func ParseSeed(r io.Reader) ([]SeedEntry, error) {
	var out []SeedEntry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tx, err := parseSeedLine(line)
		if err != nil {
			return nil, fmt.Errorf("seed line %d: %w", lineNo, err)
		}
		out = append(out, SeedEntry{Line: lineNo, Transaction: tx})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return out, nil
}

func parseSeedLine(line string) (core.Transaction, error) {
	cols := strings.Split(line, ";")
	if len(cols) < 3 || len(cols) > 5 {
		return core.Transaction{}, fmt.Errorf("expected 3 to 5 ';'-separated columns, got %d", len(cols))
	}
	for len(cols) < 5 {
		cols = append(cols, "")
	}

	date, err := core.ParseDate(cols[0])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(cols[2])
	if err != nil {
		return core.Transaction{}, err
	}

	var income bool
	switch strings.ToLower(strings.TrimSpace(cols[4])) {
	case core.KindIncome:
		income = true
	case core.KindExpense, "":
	default:
		return core.Transaction{}, fmt.Errorf("unknown kind %q", cols[4])
	}

	tx := core.Transaction{
		Date:     date,
		Category: strings.TrimSpace(cols[1]),
		Amount:   amount,
		Note:     strings.TrimSpace(cols[3]),
		IsIncome: income,
	}
	return tx, tx.Validate()
}
