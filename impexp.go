package coinfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// ExportTransactions writes the matching transactions to w as JSON Lines,
// one canonical record per line, ids and system timestamps included. An
// export fed back through ImportTransactions reproduces the same
// transactions under the same ids.
func (l *Ledger) ExportTransactions(w io.Writer, q Query) error {
	enc := json.NewEncoder(w)
	for _, tx := range l.Transactions(q) {
		if err := enc.Encode(newRecord(tx)); err != nil {
			return fmt.Errorf("export transactions: %w", err)
		}
	}
	return nil
}

// ImportTransactions reads JSON Lines records from r and adds each one,
// preserving its id. Lines that fail to decode or validate abort the import
// with the offending line number; previously read lines stay committed.
func (l *Ledger) ImportTransactions(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	added := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return added, fmt.Errorf("line %d: %w", line, err)
		}
		tx, err := decodeRecord(rec)
		if err != nil {
			return added, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := l.AddTransaction(tx); err != nil {
			return added, fmt.Errorf("line %d: %w", line, err)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("import transactions: %w", err)
	}
	return added, nil
}
