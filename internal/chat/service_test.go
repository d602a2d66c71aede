package chat

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/intentbot/internal/cache"
	"github.com/ppiankov/intentbot/internal/ierrors"
)

type fakeResponder struct {
	labels    map[string]string
	responses map[string]string
	warning   string
	predicts  atomic.Int32
}

func (f *fakeResponder) Predict(text string) (string, error) {
	f.predicts.Add(1)
	label, ok := f.labels[text]
	if !ok {
		return "", ierrors.Newf(ierrors.KindPredictionError, "predict", "", "no label for %q", text)
	}
	return label, nil
}

func (f *fakeResponder) ResponseForIntent(label string) (string, error) {
	resp, ok := f.responses[label]
	if !ok {
		return "", ierrors.Newf(ierrors.KindUnknownIntent, "response", "intents.json", "intent %q has no response", label)
	}
	return resp, nil
}

func (f *fakeResponder) ModelPath() string      { return "models/trained_model_test.gob" }
func (f *fakeResponder) PendingWarning() string { return f.warning }

func newFake() *fakeResponder {
	return &fakeResponder{
		labels:    map[string]string{"hola": "greeting", "adios": "farewell", "clima": "weather"},
		responses: map[string]string{"greeting": "¡Hola!", "farewell": "Chau"},
	}
}

func quietOpts() []Option {
	log, _ := logtest.NewNullLogger()
	return []Option{WithLogger(log)}
}

func TestHandle(t *testing.T) {
	f := newFake()
	svc := NewService(func() (Responder, error) { return f, nil }, quietOpts()...)

	resp, err := svc.Handle("hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", resp)

	resp, err = svc.Handle("adios")
	require.NoError(t, err)
	assert.Equal(t, "Chau", resp)
}

func TestHandle_WrapsErrors(t *testing.T) {
	svc := NewService(func() (Responder, error) { return newFake(), nil }, quietOpts()...)

	_, err := svc.Handle("clima")
	require.Error(t, err)

	var chatErr *Error
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, failureMsg, chatErr.Msg)
	assert.ErrorIs(t, err, ierrors.ErrUnknownIntent)
	assert.Contains(t, err.Error(), "weather")

	_, err = svc.Handle("???")
	assert.ErrorIs(t, err, ierrors.ErrPredictionError)
}

func TestResponder_RetriesFailedLoad(t *testing.T) {
	var calls int
	f := newFake()
	svc := NewService(func() (Responder, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("corpus missing")
		}
		return f, nil
	}, quietOpts()...)

	_, err := svc.Handle("hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus missing")

	resp, err := svc.Handle("hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", resp)

	_, err = svc.Handle("adios")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "successful load is kept")
}

func TestResponder_NilLoader(t *testing.T) {
	svc := NewService(nil, quietOpts()...)
	_, err := svc.Handle("hola")
	assert.Error(t, err)

	svc = NewService(func() (Responder, error) { return nil, nil }, quietOpts()...)
	_, err = svc.Handle("hola")
	assert.Error(t, err)
}

func TestResponder_ConcurrentFirstUse(t *testing.T) {
	var loads atomic.Int32
	f := newFake()
	svc := NewService(func() (Responder, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return f, nil
	}, quietOpts()...)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Handle("hola")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestHandle_CachesPredictions(t *testing.T) {
	f := newFake()
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	opts := append(quietOpts(), WithCache(c))
	svc := NewService(func() (Responder, error) { return f, nil }, opts...)

	for i := 0; i < 3; i++ {
		resp, err := svc.Handle("hola")
		require.NoError(t, err)
		assert.Equal(t, "¡Hola!", resp)
	}
	assert.Equal(t, int32(1), f.predicts.Load())

	// Responses are not cached
	f.responses["greeting"] = "¡Buenas!"
	resp, err := svc.Handle("hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Buenas!", resp)
}

func TestHandle_DoesNotCacheFailures(t *testing.T) {
	f := newFake()
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	opts := append(quietOpts(), WithCache(c))
	svc := NewService(func() (Responder, error) { return f, nil }, opts...)

	_, _ = svc.Handle("???")
	_, _ = svc.Handle("???")
	assert.Equal(t, int32(2), f.predicts.Load())
	assert.Equal(t, 0, c.Len())
}

func TestWarnings(t *testing.T) {
	f := newFake()
	svc := NewService(func() (Responder, error) { return f, nil }, quietOpts()...)
	assert.Empty(t, svc.Warnings())

	f.warning = "The training file data/intents_train.json is invalid"
	assert.Equal(t, []string{f.warning}, svc.Warnings())

	failing := NewService(func() (Responder, error) { return nil, errors.New("boom") }, quietOpts()...)
	assert.Empty(t, failing.Warnings())
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Msg: "failed", Err: cause}
	assert.Equal(t, "failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed", (&Error{Msg: "failed"}).Error())
}
