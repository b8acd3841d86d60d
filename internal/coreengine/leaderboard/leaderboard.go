// Package leaderboard ranks per-model metric records. Ranking is a pure
// function of its input records; persistence and rendering belong to the
// callers.
package leaderboard

import (
	"math"
	"sort"

	"asr-benchmark-platform/internal/coreengine/metricscalculator"
	"asr-benchmark-platform/internal/coreengine/modeladapters"
)

// ModelRecord pairs a model with one metric record, either a single-sample
// score or a per-model aggregate.
type ModelRecord struct {
	Model  modeladapters.ModelDescriptor  `json:"model"`
	Record metricscalculator.MetricRecord `json:"record"`
}

// Entry is one ranked leaderboard row. Rank is 1-based and contiguous;
// ties in the sort keys still receive distinct ranks.
type Entry struct {
	Model  modeladapters.ModelDescriptor  `json:"model"`
	Record metricscalculator.MetricRecord `json:"record"`
	Rank   int                            `json:"rank"`
}

// Rank orders records by WER ascending, then processing time ascending,
// then model name ascending for determinism, and assigns contiguous
// 1-based ranks. The input slice is not modified.
func Rank(records []ModelRecord) []Entry {
	sorted := make([]ModelRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Record.WER != b.Record.WER {
			return a.Record.WER < b.Record.WER
		}
		if a.Record.ProcessingTimeSeconds != b.Record.ProcessingTimeSeconds {
			return a.Record.ProcessingTimeSeconds < b.Record.ProcessingTimeSeconds
		}
		return a.Model.Name < b.Model.Name
	})

	entries := make([]Entry, len(sorted))
	for i, rec := range sorted {
		entries[i] = Entry{Model: rec.Model, Record: rec.Record, Rank: i + 1}
	}
	return entries
}

// AggregateByModel collapses multiple per-sample records for the same
// model into one record per model holding the arithmetic mean of every
// metric. KeyTermsFound is averaged and rounded to the nearest count;
// the per-sample matched-term lists do not survive aggregation. Output
// order follows the first appearance of each model in the input.
func AggregateByModel(records []ModelRecord) []ModelRecord {
	type bucket struct {
		model modeladapters.ModelDescriptor
		sums  metricscalculator.MetricRecord
		terms float64
		count int
	}

	var order []string
	buckets := map[string]*bucket{}
	for _, rec := range records {
		b, ok := buckets[rec.Model.Name]
		if !ok {
			b = &bucket{model: rec.Model}
			buckets[rec.Model.Name] = b
			order = append(order, rec.Model.Name)
		}
		b.sums.WER += rec.Record.WER
		b.sums.CER += rec.Record.CER
		b.sums.WordOverlapRatio += rec.Record.WordOverlapRatio
		b.sums.ProcessingTimeSeconds += rec.Record.ProcessingTimeSeconds
		b.terms += float64(rec.Record.KeyTermsFound)
		b.count++
	}

	aggregated := make([]ModelRecord, 0, len(order))
	for _, name := range order {
		b := buckets[name]
		n := float64(b.count)
		aggregated = append(aggregated, ModelRecord{
			Model: b.model,
			Record: metricscalculator.MetricRecord{
				WER:                   b.sums.WER / n,
				CER:                   b.sums.CER / n,
				WordOverlapRatio:      b.sums.WordOverlapRatio / n,
				KeyTermsFound:         int(math.Round(b.terms / n)),
				ProcessingTimeSeconds: b.sums.ProcessingTimeSeconds / n,
			},
		})
	}
	return aggregated
}
