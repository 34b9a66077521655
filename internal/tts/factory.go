package tts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/operavondervollmer/speaks/internal/console"
	"github.com/operavondervollmer/speaks/internal/tts/engines"
)

const originFactory = "Speaks - Factory"

// ModelPrompt asks for a model when none was configured.
const ModelPrompt = "Select a model:\n1. eSpeak-NG TTS\n2. Piper TTS\nInput"

// ErrModelExists is returned when registering a duplicate identifier.
var ErrModelExists = errors.New("model already registered")

// BackendFactory builds a backend from options.
type BackendFactory func(opts Options) (Backend, error)

// Registry maps model identifiers to backend factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]BackendFactory)}
}

// DefaultRegistry returns a registry with the built-in backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// RenderTimeout is applied by the Renderer through the render context
	espeak := func(opts Options) (Backend, error) {
		return engines.NewEspeakBackend(opts.Espeak)
	}
	piper := func(opts Options) (Backend, error) {
		return engines.NewPiperBackend(opts.Piper)
	}
	mock := func(Options) (Backend, error) {
		return engines.NewMockBackend(), nil
	}

	_ = r.Register(espeak, "1", "espeak")
	_ = r.Register(piper, "2", "piper")
	_ = r.Register(mock, "mock")
	return r
}

// Register adds a factory under one or more identifiers.
func (r *Registry) Register(factory BackendFactory, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, exists := r.factories[id]; exists {
			return fmt.Errorf("%w: %s", ErrModelExists, id)
		}
	}
	for _, id := range ids {
		r.factories[id] = factory
	}
	return nil
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewModel builds the model registered under id. An empty id prompts on
// the console when there is one.
func (r *Registry) NewModel(ctx context.Context, id string, opts Options) (Model, error) {
	report := reporter{console: opts.Console, logger: opts.logger()}

	if id == "" && opts.Console != nil {
		input, err := console.Prompt(ctx, opts.Console, originFactory, ModelPrompt)
		if err != nil {
			return nil, err
		}
		id = input
	}

	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()

	if !ok {
		report.print(originFactory, "FAILED: Invalid model selected", console.SeverityError, "model", id)
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}

	backend, err := factory(opts)
	if err != nil {
		report.print(originFactory, "FAILED: Could not create model", console.SeverityError, "model", id, "err", err)
		return nil, fmt.Errorf("create %s backend: %w", id, err)
	}

	return NewSpeech(ctx, backend, opts)
}

// NewModel builds a model from the default registry.
func NewModel(ctx context.Context, id string, opts Options) (Model, error) {
	return DefaultRegistry().NewModel(ctx, id, opts)
}
