package mocks

import (
	"context"
	"slices"
	"sync"

	"natours/infras/otel"
)

// Recorder is an otel.Otel that keeps every scope it opens, so tests can
// check which operations were traced and which errors they recorded.
type Recorder struct {
	mu     sync.Mutex
	scopes []*Scope
}

// NewOtel returns a Recorder behind the otel.Otel interface.
func NewOtel() otel.Otel {
	return NewRecorder()
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NewScope(ctx context.Context, _, name string) (context.Context, otel.Scope) {
	scope := &Scope{Name: name, Attributes: map[string]any{}}

	r.mu.Lock()
	r.scopes = append(r.scopes, scope)
	r.mu.Unlock()

	return ctx, scope
}

func (r *Recorder) Shutdown(_ context.Context) error {
	return nil
}

// Scope returns the first scope opened under name, or nil.
func (r *Recorder) Scope(name string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.scopes, func(s *Scope) bool { return s.Name == name })
	if idx == -1 {
		return nil
	}

	return r.scopes[idx]
}

// Errors lists the errors traced by scopes opened under name.
func (r *Recorder) Errors(name string) []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error

	for _, s := range r.scopes {
		if s.Name == name {
			errs = append(errs, s.errors()...)
		}
	}

	return errs
}

type Scope struct {
	mu         sync.Mutex
	Name       string
	Attributes map[string]any
	Events     []string
	Traced     []error
	Ended      bool
}

func (s *Scope) End() {
	s.mu.Lock()
	s.Ended = true
	s.mu.Unlock()
}

func (s *Scope) TraceError(err error) {
	s.mu.Lock()
	s.Traced = append(s.Traced, err)
	s.mu.Unlock()
}

func (s *Scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *Scope) AddEvent(name string) {
	s.mu.Lock()
	s.Events = append(s.Events, name)
	s.mu.Unlock()
}

func (s *Scope) SetAttribute(key string, value any) {
	s.mu.Lock()
	s.Attributes[key] = value
	s.mu.Unlock()
}

func (s *Scope) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}

func (s *Scope) errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.Traced)
}
