package model

import "time"

// Prediction is one labeled utterance run through the classifier
type Prediction struct {
	Text      string `json:"text"`
	Expected  string `json:"expected"`
	Predicted string `json:"predicted,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Correct reports whether the classifier returned the expected label
func (p Prediction) Correct() bool {
	return p.Error == "" && p.Predicted == p.Expected
}

// Report is the result of evaluating a model against a labeled corpus
type Report struct {
	Model       string    `json:"model"`                 // Artifact that was evaluated
	Corpus      string    `json:"corpus"`                // Labeled corpus file
	GeneratedAt time.Time `json:"generated_at"`

	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Errors     int     `json:"errors"`   // Predictions that failed outright
	Accuracy   float64 `json:"accuracy"` // Correct / Total
	Confidence string  `json:"confidence"` // "low", "medium", "high"

	PerIntent  []IntentStats `json:"per_intent"`
	Confusions []Confusion   `json:"confusions,omitempty"`
	Signals    []Signal      `json:"signals"`

	Misses []Prediction `json:"misses,omitempty"` // Every incorrect prediction
}

// IntentStats summarizes one expected intent
type IntentStats struct {
	Intent    string  `json:"intent"`
	Support   int     `json:"support"`   // Examples labeled with this intent
	Correct   int     `json:"correct"`
	Recall    float64 `json:"recall"`    // Correct / Support
	Predicted int     `json:"predicted"` // Times the classifier chose this intent
	Precision float64 `json:"precision"` // Correct / Predicted, 0 if never predicted
}

// Confusion counts one expected/predicted mismatch pair
type Confusion struct {
	Expected  string `json:"expected"`
	Predicted string `json:"predicted"`
	Count     int    `json:"count"`
}

// Signal is a diagnostic note with the data behind it
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalAccuracy         SignalType = "accuracy"          // Overall hit rate
	SignalPredictionErrors SignalType = "prediction_errors" // Classifier failures
	SignalLowRecall        SignalType = "low_recall"        // Intent often missed
	SignalConfusion        SignalType = "confusion"         // Most frequent mix-up
	SignalThinIntent       SignalType = "thin_intent"       // Too few examples
)

// SignalSeverity grades a signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
