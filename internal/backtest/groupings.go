package backtest

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Evidence levels recorded on each step
const (
	LevelOverall  = "overall"
	LevelWeekday  = "weekday"
	LevelMonthDay = "month-day"
	LevelMonth    = "month"
)

// Grouping names accepted by GroupingByName
const (
	GroupingConstant = "constant"
	GroupingWeekly   = "weekly"
	GroupingMonthly  = "monthly"
	GroupingMonth    = "month"
)

// ErrUnknownGrouping is returned when a grouping name cannot be resolved
var ErrUnknownGrouping = errors.New("unknown grouping")

// GroupKey identifies one counter inside a grouped collection
type GroupKey struct {
	Level string
	Value string
}

// String returns the counter key used by counter.Groups
func (k GroupKey) String() string {
	return k.Level + ":" + k.Value
}

// Grouping maps a date to the counters that see its value.
// Keys are ordered from the most specific to the coarsest.
type Grouping interface {
	Name() string
	Keys(date time.Time) []GroupKey
}

// Constant uses only the overall counter
type Constant struct{}

func (Constant) Name() string { return GroupingConstant }

func (Constant) Keys(time.Time) []GroupKey { return nil }

// Weekday groups by day of week, 0=Sunday
type Weekday struct{}

func (Weekday) Name() string { return GroupingWeekly }

func (Weekday) Keys(date time.Time) []GroupKey {
	return []GroupKey{{Level: LevelWeekday, Value: strconv.Itoa(int(date.Weekday()))}}
}

// MonthDay groups by calendar day, falling back to the month
type MonthDay struct{}

func (MonthDay) Name() string { return GroupingMonthly }

func (MonthDay) Keys(date time.Time) []GroupKey {
	return []GroupKey{
		{Level: LevelMonthDay, Value: date.Format("01-02")},
		{Level: LevelMonth, Value: date.Format("01")},
	}
}

// Month groups by calendar month
type Month struct{}

func (Month) Name() string { return GroupingMonth }

func (Month) Keys(date time.Time) []GroupKey {
	return []GroupKey{{Level: LevelMonth, Value: date.Format("01")}}
}

// GroupingByName resolves a configured grouping name
func GroupingByName(name string) (Grouping, error) {
	switch name {
	case GroupingConstant, "":
		return Constant{}, nil
	case GroupingWeekly:
		return Weekday{}, nil
	case GroupingMonthly:
		return MonthDay{}, nil
	case GroupingMonth:
		return Month{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrouping, name)
	}
}

// GroupingNames lists every name GroupingByName accepts
func GroupingNames() []string {
	return []string{GroupingConstant, GroupingWeekly, GroupingMonthly, GroupingMonth}
}

func keyStrings(keys []GroupKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
