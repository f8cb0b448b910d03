package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/brojonat/solcash/service/history"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past payments (newest first)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "must-jq",
				Usage: "jq filter that must evaluate to true for a record to be shown (repeatable)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records to show (0 = all)",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	logger := newLogger(c)
	store := history.NewFileStore(historyFilePath(c), logger)

	hist, err := store.Load(c.Context)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Compile jq filters
	jqFilters := c.StringSlice("must-jq")
	compiledJQFilters := make([]*gojq.Code, len(jqFilters))
	for i, filter := range jqFilters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		compiledJQFilters[i], err = gojq.Compile(query)
		if err != nil {
			return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}

	filtered := make(history.History, 0, len(hist))
	for _, rec := range hist {
		if matchesJQFilters(rec, compiledJQFilters) {
			filtered = append(filtered, rec)
		}
	}

	if limit := c.Int("limit"); limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("No payments found")
		return nil
	}

	for _, rec := range filtered {
		fmt.Println(formatHistoryLine(rec))
	}
	return nil
}

func formatHistoryLine(rec history.Record) string {
	return fmt.Sprintf("%s  %g SOL  %s -> %s  [%s]  %s",
		rec.TransactionDate.Format("2006-01-02 15:04"),
		rec.Amount, rec.From.Name, rec.To.Name, rec.Status, rec.Description)
}

// matchesJQFilters reports whether every compiled filter evaluates to true
// against the record's JSON form. Records that fail to round-trip through
// JSON never match.
func matchesJQFilters(rec history.Record, filters []*gojq.Code) bool {
	if len(filters) == 0 {
		return true
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	var recJSON interface{}
	if err := json.Unmarshal(raw, &recJSON); err != nil {
		return false
	}

	// All jq filters must evaluate to true
	for _, code := range filters {
		iter := code.Run(recJSON)
		v, ok := iter.Next()
		if !ok {
			return false
		}
		if _, isErr := v.(error); isErr {
			return false
		}
		if b, isBool := v.(bool); !isBool || !b {
			return false
		}
	}
	return true
}
