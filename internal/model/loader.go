package model

import (
	"errors"
	"fmt"
	"sync"
)

// ErrLoaderClosed is returned by Load once the Loader has been closed.
var ErrLoaderClosed = errors.New("model loader closed")

// Factory builds a model handle. It runs at most once per Loader.
type Factory func() (Classifier, error)

// Loader lazily constructs a single Classifier and hands out the same
// instance for the life of the process. A failed construction is not
// retried; every later Load returns the same error.
type Loader struct {
	factory Factory

	once sync.Once

	mu     sync.Mutex
	handle Classifier
	err    error
}

func NewLoader(factory Factory) *Loader {
	return &Loader{factory: factory}
}

func (l *Loader) Load() (Classifier, error) {
	l.once.Do(func() {
		handle, err := l.factory()
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.err = fmt.Errorf("failed to load model: %w", err)
			return
		}
		l.handle = handle
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle, l.err
}

// Close releases the handle if it was built and owns native resources.
// Afterwards Load returns ErrLoaderClosed; a Loader that never loaded
// stays unloaded.
func (l *Loader) Close() {
	l.once.Do(func() {})

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.handle.(interface{ Close() }); ok {
		c.Close()
	}
	l.handle = nil
	l.err = ErrLoaderClosed
}
