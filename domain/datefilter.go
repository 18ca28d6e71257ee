package domain

import (
	"strings"
	"time"
)

// DateFilterKind names one of the preset reporting windows.
type DateFilterKind string

const (
	FilterToday     DateFilterKind = "today"
	FilterYesterday DateFilterKind = "yesterday"
	FilterThisWeek  DateFilterKind = "this_week"
	FilterLastWeek  DateFilterKind = "last_week"
	FilterNextWeek  DateFilterKind = "next_week"
	FilterThisMonth DateFilterKind = "this_month"
	FilterLastMonth DateFilterKind = "last_month"
	FilterThisYear  DateFilterKind = "this_year"
	FilterAllTime   DateFilterKind = "all_time"
	FilterCustom    DateFilterKind = "custom"
)

// DateFilter selects a window of calendar days. From and To are only read for FilterCustom
// and are both inclusive days.
type DateFilter struct {
	Kind DateFilterKind `json:"kind"`
	From time.Time      `json:"from,omitempty"`
	To   time.Time      `json:"to,omitempty"`
}

// Interval is a half-open [Start, End) range. An unbounded interval contains every instant.
type Interval struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Unbounded bool      `json:"unbounded,omitempty"`
}

func (i Interval) Contains(t time.Time) bool {
	if i.Unbounded {
		return true
	}
	return !t.Before(i.Start) && t.Before(i.End)
}

// AllTime is the filter that matches everything.
func AllTime() DateFilter {
	return DateFilter{Kind: FilterAllTime}
}

// CustomRange builds a custom filter, rejecting a range that ends before it starts.
func CustomRange(from, to time.Time) (DateFilter, error) {
	if StartOfDay(to).Before(StartOfDay(from)) {
		return DateFilter{}, ErrInvalidRange
	}
	return DateFilter{Kind: FilterCustom, From: from, To: to}, nil
}

// Resolve turns the filter into a concrete interval in now's location. Weeks start on Monday.
func (f DateFilter) Resolve(now time.Time) Interval {
	today := StartOfDay(now)
	switch f.Kind {
	case FilterToday:
		return Interval{Start: today, End: today.AddDate(0, 0, 1)}
	case FilterYesterday:
		return Interval{Start: today.AddDate(0, 0, -1), End: today}
	case FilterThisWeek, FilterLastWeek, FilterNextWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		switch f.Kind {
		case FilterLastWeek:
			start = start.AddDate(0, 0, -7)
		case FilterNextWeek:
			start = start.AddDate(0, 0, 7)
		}
		return Interval{Start: start, End: start.AddDate(0, 0, 7)}
	case FilterThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Interval{Start: start, End: start.AddDate(0, 1, 0)}
	case FilterLastMonth:
		end := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return Interval{Start: end.AddDate(0, -1, 0), End: end}
	case FilterThisYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return Interval{Start: start, End: start.AddDate(1, 0, 0)}
	case FilterCustom:
		loc := now.Location()
		return Interval{
			Start: StartOfDay(f.From.In(loc)),
			End:   StartOfDay(f.To.In(loc)).AddDate(0, 0, 1),
		}
	default:
		return Interval{Unbounded: true}
	}
}

// ParseDateFilter normalises untyped query input. An empty kind means all time.
func ParseDateFilter(kind, from, to string, loc *time.Location) (DateFilter, error) {
	if loc == nil {
		loc = time.UTC
	}
	k := DateFilterKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case "":
		return AllTime(), nil
	case FilterToday, FilterYesterday, FilterThisWeek, FilterLastWeek, FilterNextWeek,
		FilterThisMonth, FilterLastMonth, FilterThisYear, FilterAllTime:
		return DateFilter{Kind: k}, nil
	case FilterCustom:
		fromDate, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return DateFilter{}, WrapError(ErrCodeInvalid, "invalid from date", err)
		}
		toDate, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return DateFilter{}, WrapError(ErrCodeInvalid, "invalid to date", err)
		}
		return CustomRange(fromDate, toDate)
	}
	return DateFilter{}, ErrInvalidDateFilter
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
