// Package chat turns a user message into the bot's reply. It is the single
// boundary the UI and CLI talk to; lower-layer failures come out as *Error.
package chat

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/intentbot/internal/cache"
	"github.com/ppiankov/intentbot/internal/logger"
)

// Responder predicts intents and resolves their responses
type Responder interface {
	Predict(text string) (string, error)
	ResponseForIntent(label string) (string, error)
	ModelPath() string
	PendingWarning() string
}

// Loader builds the Responder on first use
type Loader func() (Responder, error)

// Error is what callers display when a message cannot be answered
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

const failureMsg = "Error al procesar tu mensaje"

// Service answers messages with a lazily loaded Responder
type Service struct {
	load  Loader
	cache cache.Cache
	log   *logrus.Logger

	mu        sync.Mutex
	responder Responder
}

// Option customizes a Service
type Option func(*Service)

// WithCache memoizes predicted labels. Responses are still read fresh.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger replaces the process logger
func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a service; loader runs on the first message
func NewService(loader Loader, opts ...Option) *Service {
	s := &Service{
		load: loader,
		log:  logger.GetLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Responder returns the loaded Responder, loading it if needed. A failed
// load is not remembered; the next call tries again.
func (s *Service) Responder() (Responder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.responder != nil {
		return s.responder, nil
	}
	if s.load == nil {
		return nil, errors.New("no loader configured")
	}

	r, err := s.load()
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("loader returned no responder")
	}
	s.responder = r
	return r, nil
}

// Handle answers one message
func (s *Service) Handle(text string) (string, error) {
	r, err := s.Responder()
	if err != nil {
		return "", s.fail(text, err)
	}

	label, err := s.predict(r, text)
	if err != nil {
		return "", s.fail(text, err)
	}

	resp, err := r.ResponseForIntent(label)
	if err != nil {
		return "", s.fail(text, err)
	}

	s.log.WithFields(logrus.Fields{
		"intent": label,
		"chars":  len(text),
	}).Debug("message handled")
	return resp, nil
}

func (s *Service) predict(r Responder, text string) (string, error) {
	if s.cache == nil {
		return r.Predict(text)
	}

	key := cache.CacheKey(r.ModelPath(), text)
	if label, ok := s.cache.Get(key); ok {
		return label, nil
	}
	label, err := r.Predict(text)
	if err != nil {
		return "", err
	}
	s.cache.Set(key, label)
	return label, nil
}

func (s *Service) fail(text string, err error) error {
	s.log.WithError(err).WithField("chars", len(text)).Error("message failed")
	return &Error{Msg: failureMsg, Err: err}
}

// Warnings lists notes the user should see before chatting, such as a
// rejected training batch. A failed load yields none.
func (s *Service) Warnings() []string {
	r, err := s.Responder()
	if err != nil {
		return nil
	}
	if w := r.PendingWarning(); w != "" {
		return []string{w}
	}
	return nil
}
