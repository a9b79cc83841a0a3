package router

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zen-systems/askcmd/pkg/adapter"
	"github.com/zen-systems/askcmd/pkg/config"
)

// ErrNoAdapter is returned when neither the requested nor the fallback
// adapter can be constructed.
var ErrNoAdapter = errors.New("no working AI adapter available")

// ConstructFunc builds the adapter for a name.
type ConstructFunc func(ctx context.Context, name config.AdapterName) (adapter.Adapter, error)

// Selection is the outcome of adapter selection.
type Selection struct {
	Adapter      adapter.Adapter
	Name         config.AdapterName
	Requested    config.AdapterName
	FallbackUsed bool
}

// Selector resolves an adapter with at most one fallback hop.
type Selector struct {
	cfg       *config.Config
	construct ConstructFunc
	logger    *zap.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *zap.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a selector over the configured adapters. construct is
// only called for adapters whose API key is present.
func NewSelector(cfg *config.Config, construct ConstructFunc, opts ...SelectorOption) *Selector {
	s := &Selector{
		cfg:       cfg,
		construct: construct,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the requested adapter, or the configured fallback if the
// requested one is unavailable. Failures that happen later, while querying,
// are never routed back here.
func (s *Selector) Select(ctx context.Context, requested config.AdapterName) (*Selection, error) {
	a, err := s.try(ctx, requested)
	if err == nil {
		return &Selection{Adapter: a, Name: requested, Requested: requested}, nil
	}

	fallback := s.cfg.FallbackAdapter
	if requested == fallback {
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}

	s.logger.Info("Falling back to "+string(fallback)+" adapter",
		zap.String("requested", string(requested)),
		zap.Error(err))

	fa, ferr := s.try(ctx, fallback)
	if ferr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, errors.Join(err, ferr))
	}

	return &Selection{Adapter: fa, Name: fallback, Requested: requested, FallbackUsed: true}, nil
}

func (s *Selector) try(ctx context.Context, name config.AdapterName) (adapter.Adapter, error) {
	if !s.cfg.HasAdapter(name) {
		return nil, fmt.Errorf("%s adapter unavailable: API key not configured", name)
	}
	a, err := s.construct(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s adapter: %w", name, err)
	}
	return a, nil
}
