package projection

import (
	"sort"
	"time"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
)

// rollupForGranularity folds hourly buckets into the requested granularity.
func rollupForGranularity(hourly []*coverage.TimeSpan, granularity string, start, end time.Time) []SpanValue {
	switch granularity {
	case "1d":
		return rollupToDay(hourly, start, end)
	case "total":
		return rollupTotal(hourly, start, end)
	default:
		return toSpanValues(hourly)
	}
}

// rollupTotal merges every bucket into one span covering [floor(start), floor(end)).
// Ship sets are unioned so distinct counts stay distinct.
func rollupTotal(hourly []*coverage.TimeSpan, start, end time.Time) []SpanValue {
	total := coverage.NewTimeSpan(coverage.FloorHour(start))
	total.Last = coverage.FloorHour(end)
	for _, span := range hourly {
		total.Add(span)
	}
	return []SpanValue{toSpanValue(total)}
}

// rollupToDay groups hourly buckets into UTC days. Days without data are
// still emitted with zero counters.
func rollupToDay(hourly []*coverage.TimeSpan, start, end time.Time) []SpanValue {
	dailyBuckets := make(map[time.Time]*coverage.TimeSpan)
	var days []*coverage.TimeSpan

	currentDay := truncateToDay(start)
	endDayExclusive := truncateToDay(end)
	if end.After(endDayExclusive) {
		endDayExclusive = endDayExclusive.Add(24 * time.Hour)
	}
	for currentDay.Before(endDayExclusive) {
		day := coverage.NewTimeSpan(currentDay)
		day.Last = currentDay.Add(24 * time.Hour)
		dailyBuckets[currentDay] = day
		days = append(days, day)
		currentDay = currentDay.Add(24 * time.Hour)
	}

	for _, span := range hourly {
		if day, ok := dailyBuckets[truncateToDay(span.First)]; ok {
			day.Add(span)
		}
	}
	return toSpanValues(days)
}

// truncateToDay truncates a timestamp to the start of the day (00:00:00 UTC).
func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func toSpanValues(spans []*coverage.TimeSpan) []SpanValue {
	out := make([]SpanValue, 0, len(spans))
	for _, span := range spans {
		out = append(out, toSpanValue(span))
	}
	return out
}

func toSpanValue(span *coverage.TimeSpan) SpanValue {
	return SpanValue{
		First:                               span.First,
		Last:                                span.Last,
		MessageCounterSat:                   span.MessageCounterSat,
		MessageCounterTerrestrial:           span.MessageCounterTerrestrial,
		MessageCounterTerrestrialUnfiltered: span.MessageCounterTerrestrialUnfiltered,
		MissingSignals:                      span.MissingSignals,
		VsiMessages:                         span.VsiMessageCounter,
		AverageSignalStrength:               span.AverageSignalStrength,
		DistinctShipsSat:                    len(span.DistinctShipsSat),
		DistinctShipsTerrestrial:            len(span.DistinctShipsTerrestrial),
	}
}

func sortCells(cells []CoverageCell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })
}
