// Package classifier wraps a multinomial naive Bayes text classifier behind a
// fit/predict/serialize facade.
package classifier

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/jbrukh/bayesian"

	"github.com/ppiankov/intentbot/internal/ierrors"
)

const envelopeVersion = 1

// Options controls feature extraction
type Options struct {
	FoldAccents    bool
	MinTokenLength int
	TfIdf          bool // weight terms by TF-IDF instead of raw counts
}

// DefaultOptions mirrors the usual bag-of-words defaults: tokens of two or
// more word characters, accents folded.
func DefaultOptions() Options {
	return Options{FoldAccents: true, MinTokenLength: 2}
}

// Score is the log-likelihood of one label for an input
type Score struct {
	Label    string  `json:"label"`
	LogScore float64 `json:"log_score"`
}

// Classifier maps utterances to intent labels. It is safe for concurrent
// Predict calls once fitted.
type Classifier struct {
	opts   Options
	labels []string
	nb     *bayesian.Classifier // nil when only one label was seen
	fitted bool
}

// New creates an unfitted classifier
func New(opts Options) *Classifier {
	if opts.MinTokenLength <= 0 {
		opts.MinTokenLength = 1
	}
	return &Classifier{opts: opts}
}

// Fit trains from scratch on parallel example/label lists
func (c *Classifier) Fit(examples, labels []string) error {
	if len(examples) != len(labels) {
		return ierrors.Newf(ierrors.KindTypeError, "fit", "", "%d examples but %d labels", len(examples), len(labels))
	}
	if len(examples) == 0 {
		return ierrors.Newf(ierrors.KindValidationFailure, "fit", "", "no training examples")
	}

	var distinct []string
	seen := make(map[string]bool)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			distinct = append(distinct, l)
		}
	}

	c.labels = distinct
	c.nb = nil
	c.fitted = false

	// The library needs at least two classes; one label needs no model
	if len(distinct) > 1 {
		classes := make([]bayesian.Class, len(distinct))
		for i, l := range distinct {
			classes[i] = bayesian.Class(l)
		}
		var nb *bayesian.Classifier
		if c.opts.TfIdf {
			nb = bayesian.NewClassifierTfIdf(classes...)
		} else {
			nb = bayesian.NewClassifier(classes...)
		}
		for i, ex := range examples {
			nb.Learn(c.terms(ex), bayesian.Class(labels[i]))
		}
		if c.opts.TfIdf {
			nb.ConvertTermsFreqToTfIdf()
		}
		c.nb = nb
	}

	c.fitted = true
	return nil
}

// terms tokenizes text for the model. Text made only of words shorter than
// MinTokenLength keeps those words.
func (c *Classifier) terms(text string) []string {
	tokens := Tokenize(text, c.opts)
	if len(tokens) == 0 && c.opts.MinTokenLength > 1 {
		short := c.opts
		short.MinTokenLength = 1
		tokens = Tokenize(text, short)
	}
	return tokens
}

// Fitted reports whether Fit or UnmarshalBinary succeeded
func (c *Classifier) Fitted() bool {
	return c.fitted
}

// Labels returns the known labels in first-seen order
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Options returns the tokenization options
func (c *Classifier) Options() Options {
	return c.opts
}

// Predict returns the best label for text
func (c *Classifier) Predict(text string) (string, error) {
	if !c.fitted {
		return "", ierrors.Newf(ierrors.KindPredictionError, "predict", "", "classifier has not been fit")
	}
	if c.nb == nil {
		return c.labels[0], nil
	}

	_, best, _ := c.nb.LogScores(c.terms(text))
	return string(c.nb.Classes[best]), nil
}

// Scores returns every label's log score for text, best first
func (c *Classifier) Scores(text string) ([]Score, error) {
	if !c.fitted {
		return nil, ierrors.Newf(ierrors.KindPredictionError, "scores", "", "classifier has not been fit")
	}
	if c.nb == nil {
		return []Score{{Label: c.labels[0]}}, nil
	}

	raw, _, _ := c.nb.LogScores(c.terms(text))
	scores := make([]Score, len(raw))
	for i, s := range raw {
		scores[i] = Score{Label: string(c.nb.Classes[i]), LogScore: s}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].LogScore > scores[j].LogScore })
	return scores, nil
}

type envelope struct {
	Version int
	Options Options
	Labels  []string
	Model   []byte
}

// MarshalBinary serializes a fitted classifier
func (c *Classifier) MarshalBinary() ([]byte, error) {
	if !c.fitted {
		return nil, ierrors.Newf(ierrors.KindSerializationError, "marshal classifier", "", "classifier has not been fit")
	}

	env := envelope{Version: envelopeVersion, Options: c.opts, Labels: c.labels}
	if c.nb != nil {
		var model bytes.Buffer
		if err := c.nb.WriteTo(&model); err != nil {
			return nil, ierrors.New(ierrors.KindSerializationError, "marshal classifier", "", err)
		}
		env.Model = model.Bytes()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, ierrors.New(ierrors.KindSerializationError, "marshal classifier", "", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a classifier produced by MarshalBinary
func (c *Classifier) UnmarshalBinary(data []byte) error {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return ierrors.New(ierrors.KindMalformedData, "unmarshal classifier", "", err)
	}
	if env.Version != envelopeVersion {
		return ierrors.Newf(ierrors.KindMalformedData, "unmarshal classifier", "", "unsupported version %d", env.Version)
	}
	if len(env.Labels) == 0 {
		return ierrors.Newf(ierrors.KindMalformedData, "unmarshal classifier", "", "no labels")
	}

	var nb *bayesian.Classifier
	if len(env.Labels) > 1 {
		var err error
		nb, err = bayesian.NewClassifierFromReader(bytes.NewReader(env.Model))
		if err != nil {
			return ierrors.New(ierrors.KindMalformedData, "unmarshal classifier", "", err)
		}
		if len(nb.Classes) != len(env.Labels) {
			return ierrors.Newf(ierrors.KindMalformedData, "unmarshal classifier", "", "model has %d classes, envelope %d labels", len(nb.Classes), len(env.Labels))
		}
	}

	c.opts = env.Options
	c.labels = env.Labels
	c.nb = nb
	c.fitted = true
	return nil
}

// Save writes the classifier to a new file; an existing file is an error
func (c *Classifier) Save(path string) (err error) {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return ierrors.New(ierrors.KindIOFailure, "save model", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = ierrors.New(ierrors.KindIOFailure, "save model", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return ierrors.New(ierrors.KindIOFailure, "save model", path, err)
	}
	if err = f.Sync(); err != nil {
		return ierrors.New(ierrors.KindIOFailure, "save model", path, err)
	}
	return nil
}

// Load reads a classifier written by Save
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ierrors.New(ierrors.KindNotFound, "load model", path, err)
		}
		return nil, ierrors.New(ierrors.KindIOFailure, "load model", path, err)
	}

	c := &Classifier{}
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return c, nil
}
