// Package lifecycle decides at startup which classifier to serve: it loads the
// newest saved model or trains one from the corpus, then folds any pending
// training batch into the corpus and retrains. After New returns the manager
// only reads.
package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/intentbot/internal/archive"
	"github.com/ppiankov/intentbot/internal/classifier"
	"github.com/ppiankov/intentbot/internal/corpus"
	"github.com/ppiankov/intentbot/internal/ierrors"
	"github.com/ppiankov/intentbot/internal/logger"
	"github.com/ppiankov/intentbot/internal/model"
	"github.com/ppiankov/intentbot/internal/util"
)

// Manager owns the active classifier and the choice of current artifact
type Manager struct {
	paths   model.PathsConfig
	opts    classifier.Options
	stamper *util.Stamper
	clock   util.Clock
	log     *logrus.Logger

	clf        *classifier.Classifier
	modelPath  string
	state      State
	trace      []State
	pending    PendingStatus
	pendingErr error
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock sets the clock used for artifact and archive stamps
func WithClock(c util.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger replaces the process logger
func WithLogger(l *logrus.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Reply is a resolved conversation turn
type Reply struct {
	Intent   string `json:"intent"`
	Response string `json:"response"`
}

// New runs the startup sequence and returns a ready manager. Errors are
// fatal: there is no usable classifier without them.
func New(cfg *model.Config, options ...Option) (*Manager, error) {
	m := &Manager{
		paths: cfg.Paths,
		opts: classifier.Options{
			FoldAccents:    cfg.Classifier.FoldAccents,
			MinTokenLength: cfg.Classifier.MinTokenLength,
			TfIdf:          cfg.Classifier.TfIdf,
		},
		clock: util.SystemClock{},
		log:   logger.GetLogger(),
	}
	for _, o := range options {
		o(m)
	}
	m.stamper = util.NewStamper(m.clock)

	if err := m.run(); err != nil {
		return nil, fmt.Errorf("initialize classifier: %w", err)
	}
	return m, nil
}

func (m *Manager) enter(s State) {
	m.state = s
	m.trace = append(m.trace, s)
	m.log.WithField("state", s.String()).Debug("lifecycle")
}

func (m *Manager) run() error {
	m.enter(StateDiscoverModel)
	artifacts, err := ListArtifacts(m.paths.ModelsDir)
	if err != nil {
		return err
	}

	if len(artifacts) == 0 {
		m.enter(StateCreateAndTrain)
		if err := m.createAndTrain(); err != nil {
			return err
		}
	} else {
		m.enter(StateLoadExisting)
		if err := m.loadExisting(artifacts[0].Path); err != nil {
			return err
		}
	}

	m.enter(StateCheckPendingTraining)
	batch, ok := m.checkPending()
	if ok {
		m.enter(StateMergeAndRetrain)
		if err := m.mergeAndRetrain(batch); err != nil {
			return err
		}
	}
	if m.pending == PendingInvalid || m.pending == PendingUnreadable {
		m.enter(StateKeepCurrent)
	}

	m.enter(StateReady)
	m.log.WithFields(logrus.Fields{
		"artifact": m.modelPath,
		"pending":  m.pending.String(),
	}).Info("classifier ready")
	return nil
}

func (m *Manager) createAndTrain() error {
	path := m.paths.CorpusPath()
	c, err := corpus.Load(path)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	if err := corpus.Check(c); err != nil {
		return fmt.Errorf("create model from %s: %w", path, err)
	}

	clf := classifier.New(m.opts)
	if err := clf.Fit(c.TrainingSet()); err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	saved, err := m.persist(clf)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	m.clf = clf
	m.modelPath = saved
	m.log.WithFields(logrus.Fields{
		"artifact": saved,
		"intents":  len(c.Intents),
		"examples": c.ExampleCount(),
	}).Info("no saved model found, trained a new one")
	return nil
}

func (m *Manager) loadExisting(path string) error {
	clf, err := classifier.Load(path)
	if err != nil {
		return err
	}
	m.clf = clf
	m.modelPath = path
	m.log.WithField("artifact", path).Info("loaded model")
	return nil
}

// checkPending returns the pending batch when one exists and is usable. A
// batch that cannot be read or fails validation stays where it is.
func (m *Manager) checkPending() (*corpus.Corpus, bool) {
	path := m.paths.TrainingPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}

	m.log.WithField("path", path).Info("found pending training batch")

	batch, err := corpus.Load(path)
	if err != nil {
		m.rejectPending(PendingUnreadable, err)
		return nil, false
	}
	if err := corpus.Check(batch); err != nil {
		var ie *ierrors.Error
		if errors.As(err, &ie) {
			ie.Path = path
		}
		m.rejectPending(PendingInvalid, err)
		return nil, false
	}

	return batch, true
}

func (m *Manager) rejectPending(status PendingStatus, err error) {
	m.pending = status
	m.pendingErr = err
	m.log.WithError(err).WithFields(logrus.Fields{
		"path":     m.paths.TrainingPath(),
		"artifact": m.modelPath,
	}).Warn("training batch rejected, keeping current model")
}

func (m *Manager) mergeAndRetrain(batch *corpus.Corpus) (err error) {
	corpusPath := m.paths.CorpusPath()
	trainingPath := m.paths.TrainingPath()

	base, err := corpus.Load(corpusPath)
	if err != nil {
		m.rejectPending(PendingUnreadable, err)
		return nil
	}
	merged, err := corpus.Merge(base.Clone(), batch)
	if err != nil {
		m.rejectPending(PendingInvalid, err)
		return nil
	}

	// Past this point every failure is fatal; undo restores the files
	var undo []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			if rbErr := undo[i](); rbErr != nil {
				m.log.WithError(rbErr).Error("rollback step failed")
			}
		}
	}()

	stamp := m.stamper.Next()

	archivedBatch, err := archive.Archive(trainingPath, archive.Name(stamp, trainingPath), m.paths.TrainingArchive())
	if err != nil {
		return fmt.Errorf("archive training batch: %w", err)
	}
	undo = append(undo, func() error { return os.Rename(archivedBatch, trainingPath) })

	archivedCorpus, err := archive.Archive(corpusPath, archive.Name(stamp, corpusPath), m.paths.CorpusArchive())
	if err != nil {
		return fmt.Errorf("archive corpus: %w", err)
	}
	undo = append(undo, func() error {
		_ = os.Remove(corpusPath)
		return os.Rename(archivedCorpus, corpusPath)
	})

	if err = corpus.Save(merged, corpusPath); err != nil {
		return fmt.Errorf("write merged corpus: %w", err)
	}

	clf := classifier.New(m.opts)
	examples, labels := merged.TrainingSet()
	if err = clf.Fit(examples, labels); err != nil {
		return fmt.Errorf("retrain: %w", err)
	}

	saved, err := m.persist(clf)
	if err != nil {
		return fmt.Errorf("retrain: %w", err)
	}
	undo = append(undo, func() error { return os.Remove(saved) })

	reloaded, err := classifier.Load(saved)
	if err != nil {
		return fmt.Errorf("reload retrained model: %w", err)
	}
	if err = verifyRoundTrip(clf, reloaded, examples); err != nil {
		return ierrors.New(ierrors.KindSerializationError, "verify retrained model", saved, err)
	}

	previous := m.modelPath
	m.clf = reloaded
	m.modelPath = saved
	m.pending = PendingMerged
	m.log.WithFields(logrus.Fields{
		"previous":        previous,
		"artifact":        saved,
		"archived_batch":  archivedBatch,
		"archived_corpus": archivedCorpus,
		"intents":         len(merged.Intents),
		"examples":        len(examples),
	}).Info("merged training batch and retrained")
	return nil
}

func verifyRoundTrip(original, reloaded *classifier.Classifier, examples []string) error {
	for _, ex := range examples {
		want, err := original.Predict(ex)
		if err != nil {
			return err
		}
		got, err := reloaded.Predict(ex)
		if err != nil {
			return err
		}
		if want != got {
			return fmt.Errorf("example %q: in-memory model says %q, reloaded model says %q", ex, want, got)
		}
	}
	return nil
}

func (m *Manager) persist(clf *classifier.Classifier) (string, error) {
	if err := os.MkdirAll(m.paths.ModelsDir, 0755); err != nil {
		return "", ierrors.New(ierrors.KindIOFailure, "save model", m.paths.ModelsDir, err)
	}
	path, err := util.UniquePath(m.paths.ModelsDir, artifactName(m.stamper.Next()))
	if err != nil {
		return "", ierrors.New(ierrors.KindIOFailure, "save model", m.paths.ModelsDir, err)
	}
	if err := clf.Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// Predict returns the intent label for text
func (m *Manager) Predict(text string) (string, error) {
	if m == nil || m.clf == nil {
		return "", ierrors.Newf(ierrors.KindPredictionError, "predict", "", "no model loaded")
	}
	return m.clf.Predict(text)
}

// ResponseForIntent reads the corpus afresh and returns the intent's response
func (m *Manager) ResponseForIntent(label string) (string, error) {
	path := m.paths.CorpusPath()
	c, err := corpus.Load(path)
	if err != nil {
		return "", fmt.Errorf("response for %q: %w", label, err)
	}

	in, ok := c.Lookup(label)
	if !ok || in.ResponseText() == "" {
		return "", ierrors.Newf(ierrors.KindUnknownIntent, "response", path,
			"intent %q has no response; the corpus is out of date for model %s, update the corpus to match the model",
			label, m.modelPath)
	}
	return in.ResponseText(), nil
}

// Reply predicts the intent of text and resolves its response
func (m *Manager) Reply(text string) (Reply, error) {
	label, err := m.Predict(text)
	if err != nil {
		return Reply{}, err
	}
	resp, err := m.ResponseForIntent(label)
	if err != nil {
		return Reply{Intent: label}, err
	}
	return Reply{Intent: label, Response: resp}, nil
}

// Classifier returns the active classifier (read-only use)
func (m *Manager) Classifier() *classifier.Classifier {
	return m.clf
}

// ModelPath is the artifact backing the active classifier
func (m *Manager) ModelPath() string {
	return m.modelPath
}

// State is the final state, StateReady after New succeeds
func (m *Manager) State() State {
	return m.state
}

// Trace lists the states visited during startup
func (m *Manager) Trace() []State {
	return append([]State(nil), m.trace...)
}

// Pending reports what happened to the pending training batch and why it was
// rejected, if it was.
func (m *Manager) Pending() (PendingStatus, error) {
	return m.pending, m.pendingErr
}

// PendingWarning is a user-facing note about a rejected batch, "" otherwise
func (m *Manager) PendingWarning() string {
	switch m.pending {
	case PendingInvalid:
		return fmt.Sprintf("The training file %s is invalid and was not applied: %v", m.paths.TrainingPath(), m.pendingErr)
	case PendingUnreadable:
		return fmt.Sprintf("The training file %s could not be read and was not applied: %v", m.paths.TrainingPath(), m.pendingErr)
	default:
		return ""
	}
}
