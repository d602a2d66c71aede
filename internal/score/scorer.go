// Package score turns evaluation predictions into a report with diagnostic
// signals.
package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/intentbot/internal/model"
)

// Scorer calculates evaluation metrics and generates signals
type Scorer struct {
	// LowRecall flags intents whose recall falls below it
	LowRecall float64
	// MinSupport flags intents with fewer examples than this
	MinSupport int
}

// NewScorer creates a scorer with default thresholds
func NewScorer() *Scorer {
	return &Scorer{
		LowRecall:  0.5,
		MinSupport: 2,
	}
}

// Calculate scores predictions with the default thresholds
func Calculate(predictions []model.Prediction) model.Report {
	return NewScorer().Calculate(predictions)
}

// Calculate builds the report. Per-intent stats are sorted by intent name and
// confusions by count, so the same predictions always give the same report.
func (s *Scorer) Calculate(predictions []model.Prediction) model.Report {
	report := model.Report{
		Total:      len(predictions),
		PerIntent:  []model.IntentStats{},
		Signals:    []model.Signal{},
		Confusions: nil,
	}

	stats := make(map[string]*model.IntentStats)
	predicted := make(map[string]int)
	confusions := make(map[[2]string]int)

	statsFor := func(intent string) *model.IntentStats {
		st, ok := stats[intent]
		if !ok {
			st = &model.IntentStats{Intent: intent}
			stats[intent] = st
		}
		return st
	}

	for _, p := range predictions {
		st := statsFor(p.Expected)
		st.Support++

		if p.Error != "" {
			report.Errors++
			report.Misses = append(report.Misses, p)
			continue
		}

		predicted[p.Predicted]++
		if p.Correct() {
			report.Correct++
			st.Correct++
			continue
		}
		confusions[[2]string{p.Expected, p.Predicted}]++
		report.Misses = append(report.Misses, p)
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}

	for intent, st := range stats {
		st.Recall = ratio(st.Correct, st.Support)
		st.Predicted = predicted[intent]
		st.Precision = ratio(st.Correct, st.Predicted)
		report.PerIntent = append(report.PerIntent, *st)
	}
	sort.Slice(report.PerIntent, func(i, j int) bool {
		return report.PerIntent[i].Intent < report.PerIntent[j].Intent
	})

	for pair, count := range confusions {
		report.Confusions = append(report.Confusions, model.Confusion{
			Expected:  pair[0],
			Predicted: pair[1],
			Count:     count,
		})
	}
	sort.Slice(report.Confusions, func(i, j int) bool {
		a, b := report.Confusions[i], report.Confusions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Expected != b.Expected {
			return a.Expected < b.Expected
		}
		return a.Predicted < b.Predicted
	})

	report.Signals = append(report.Signals, s.accuracySignal(report))
	if report.Errors > 0 {
		report.Signals = append(report.Signals, s.errorSignal(report))
	}
	report.Signals = append(report.Signals, s.intentSignals(report.PerIntent)...)
	if len(report.Confusions) > 0 {
		report.Signals = append(report.Signals, s.confusionSignal(report.Confusions[0]))
	}

	report.Confidence = s.determineConfidence(report)
	return report
}

func (s *Scorer) accuracySignal(r model.Report) model.Signal {
	severity := model.SeverityInfo
	if r.Accuracy < 0.5 {
		severity = model.SeverityCritical
	} else if r.Accuracy < 0.8 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalAccuracy,
		Severity:    severity,
		Description: fmt.Sprintf("Accuracy: %d/%d (%.0f%%)", r.Correct, r.Total, r.Accuracy*100),
		Data: map[string]interface{}{
			"correct":  r.Correct,
			"total":    r.Total,
			"accuracy": r.Accuracy,
			"formula":  "correct / total",
		},
	}
}

func (s *Scorer) errorSignal(r model.Report) model.Signal {
	return model.Signal{
		Type:        model.SignalPredictionErrors,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("%d of %d predictions failed", r.Errors, r.Total),
		Data: map[string]interface{}{
			"errors": r.Errors,
			"total":  r.Total,
		},
	}
}

func (s *Scorer) intentSignals(perIntent []model.IntentStats) []model.Signal {
	var signals []model.Signal
	for _, st := range perIntent {
		if st.Recall < s.LowRecall {
			severity := model.SeverityWarning
			if st.Correct == 0 {
				severity = model.SeverityCritical
			}
			signals = append(signals, model.Signal{
				Type:        model.SignalLowRecall,
				Severity:    severity,
				Description: fmt.Sprintf("Intent %q recognized %d/%d times", st.Intent, st.Correct, st.Support),
				Data: map[string]interface{}{
					"intent":    st.Intent,
					"recall":    st.Recall,
					"threshold": s.LowRecall,
				},
			})
		}
		if st.Support < s.MinSupport {
			signals = append(signals, model.Signal{
				Type:        model.SignalThinIntent,
				Severity:    model.SeverityInfo,
				Description: fmt.Sprintf("Intent %q has only %d example(s)", st.Intent, st.Support),
				Data: map[string]interface{}{
					"intent":      st.Intent,
					"support":     st.Support,
					"min_support": s.MinSupport,
				},
			})
		}
	}
	return signals
}

func (s *Scorer) confusionSignal(top model.Confusion) model.Signal {
	return model.Signal{
		Type:        model.SignalConfusion,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%q mistaken for %q %d time(s)", top.Expected, top.Predicted, top.Count),
		Data: map[string]interface{}{
			"expected":  top.Expected,
			"predicted": top.Predicted,
			"count":     top.Count,
		},
	}
}

// determineConfidence grades how much the accuracy figure can be trusted
func (s *Scorer) determineConfidence(r model.Report) string {
	if r.Errors > 0 || r.Total < 10 {
		return "low"
	}

	if r.Accuracy >= 0.9 && r.Total >= 30 {
		return "high"
	} else if r.Accuracy >= 0.7 {
		return "medium"
	} else {
		return "low"
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
