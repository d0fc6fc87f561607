package forecast

import (
	"sort"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/models"
)

// PositionalRow holds per-position counts and probabilities for one digit
type PositionalRow struct {
	Digit  int                       `json:"digit"`
	Counts [models.Positions]int     `json:"counts"`
	Probs  [models.Positions]float64 `json:"probs"`
}

// PositionalTable is the digit frequency table of one counter
type PositionalTable struct {
	Group string          `json:"group"`
	Total int             `json:"total"`
	Rows  []PositionalRow `json:"rows"`
}

// TripletRow is one observed triplet with its empirical frequency
type TripletRow struct {
	Triplet     models.Triplet `json:"triplet"`
	Count       int            `json:"count"`
	Probability float64        `json:"probability"`
}

// TripletTable lists observed triplets of one counter
type TripletTable struct {
	Group string       `json:"group"`
	Total int          `json:"total"`
	Rows  []TripletRow `json:"rows"`
}

// NewPositionalTable builds the 10-row digit table
func NewPositionalTable(group string, snap counter.Snapshot) PositionalTable {
	total := snap.Total()
	table := PositionalTable{Group: group, Total: total, Rows: make([]PositionalRow, models.Digits)}
	for d := 0; d < models.Digits; d++ {
		row := PositionalRow{Digit: d}
		for p := 0; p < models.Positions; p++ {
			row.Counts[p] = snap.PositionCount(p, d)
			if total > 0 {
				row.Probs[p] = float64(row.Counts[p]) / float64(total)
			}
		}
		table.Rows[d] = row
	}
	return table
}

// NewTripletTable lists seen triplets by descending count, ties ascending
func NewTripletTable(group string, snap counter.Snapshot) TripletTable {
	total := snap.Total()
	seen := snap.Seen()
	table := TripletTable{Group: group, Total: total, Rows: make([]TripletRow, 0, len(seen))}
	for _, t := range seen {
		count := snap.Count(t)
		table.Rows = append(table.Rows, TripletRow{
			Triplet:     t,
			Count:       count,
			Probability: float64(count) / float64(total),
		})
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		if table.Rows[i].Count != table.Rows[j].Count {
			return table.Rows[i].Count > table.Rows[j].Count
		}
		return table.Rows[i].Triplet < table.Rows[j].Triplet
	})
	return table
}

// Tables holds frequency tables for the overall counter and every group
type Tables struct {
	Positional []PositionalTable `json:"positional"`
	Triplets   []TripletTable    `json:"triplets"`
}

// BuildTables walks the overall counter first, then keys in sorted order
func BuildTables(state *counter.Groups) Tables {
	var tables Tables
	add := func(group string, snap counter.Snapshot) {
		tables.Positional = append(tables.Positional, NewPositionalTable(group, snap))
		tables.Triplets = append(tables.Triplets, NewTripletTable(group, snap))
	}

	add(backtest.LevelOverall, state.Overall.Snapshot())
	for _, key := range state.Keys() {
		c, _ := state.Lookup(key)
		add(key, c.Snapshot())
	}
	return tables
}
