package worker

import (
	"context"
	"sort"

	"github.com/ppiankov/intentbot/internal/corpus"
	"github.com/ppiankov/intentbot/internal/model"
)

// Predictor classifies a single utterance
type Predictor interface {
	Predict(text string) (string, error)
}

// PredictJob classifies one labeled example
type PredictJob struct {
	Index     int
	Text      string
	Expected  string
	Predictor Predictor
}

// Execute executes the prediction job
func (j *PredictJob) Execute(ctx context.Context) Result {
	res := &PredictionResult{
		Index:      j.Index,
		Prediction: model.Prediction{Text: j.Text, Expected: j.Expected},
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		res.Prediction.Error = err.Error()
		return res
	}

	label, err := j.Predictor.Predict(j.Text)
	if err != nil {
		res.Err = err
		res.Prediction.Error = err.Error()
		return res
	}
	res.Prediction.Predicted = label
	return res
}

// PredictionResult is the outcome of a PredictJob
type PredictionResult struct {
	Index      int // Position of the example in the corpus
	Prediction model.Prediction
	Err        error
}

// GetError returns the error from the prediction
func (r *PredictionResult) GetError() error {
	return r.Err
}

// Evaluator classifies every example of a labeled corpus concurrently
type Evaluator struct {
	predictor   Predictor
	concurrency int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(predictor Predictor, concurrency int) *Evaluator {
	return &Evaluator{
		predictor:   predictor,
		concurrency: concurrency,
	}
}

// Run predicts every example in c. Results come back in corpus order; on
// cancellation only the examples that ran are returned.
func (e *Evaluator) Run(ctx context.Context, c *corpus.Corpus) []*PredictionResult {
	examples, labels := c.TrainingSet()
	if len(examples) == 0 {
		return []*PredictionResult{}
	}

	jobs := make([]Job, len(examples))
	for i := range examples {
		jobs[i] = &PredictJob{
			Index:     i,
			Text:      examples[i],
			Expected:  labels[i],
			Predictor: e.predictor,
		}
	}

	pool := NewPool(ctx, e.concurrency)
	results := pool.Run(jobs)

	out := make([]*PredictionResult, len(results))
	for i, result := range results {
		out[i] = result.(*PredictionResult)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Predictions extracts the predictions from results, in order
func Predictions(results []*PredictionResult) []model.Prediction {
	out := make([]model.Prediction, len(results))
	for i, r := range results {
		out[i] = r.Prediction
	}
	return out
}
