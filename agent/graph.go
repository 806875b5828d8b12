// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/intellicourse/core"
)

// Graph runs queries through the routing and synthesis pipeline.
// It holds no per-query state and is safe for concurrent use.
type Graph struct {
	resources *Resources
	router    *Router
	generator *Generator
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// WithObserver registers an observer for pipeline events.
func WithObserver(observer Observer) Option {
	return func(g *Graph) error {
		if observer == nil {
			observer = noopObserver{}
		}
		g.observer = observer
		return nil
	}
}

// NewGraph creates a pipeline over resources.
func NewGraph(resources *Resources, opts ...Option) (*Graph, error) {
	if resources == nil {
		return nil, ErrResourcesRequired
	}

	g := &Graph{
		resources: resources,
		observer:  noopObserver{},
		logger:    slog.Default().With("component", "agent"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.router = NewRouter(g.logger)
	g.generator = NewGenerator(g.logger)

	return g, nil
}

// Run answers query. Any stage failure aborts the run and is returned
// unchanged; there are no partial results.
func (g *Graph) Run(ctx context.Context, query string) (*core.ConversationResult, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	state := &State{Query: query, Stage: StageRouting}

	if err := g.advance(ctx, state, StageRouting, g.route); err != nil {
		return nil, err
	}
	if err := g.advance(ctx, state, StageRetrieving, g.retrieve); err != nil {
		return nil, err
	}
	if err := g.advance(ctx, state, StageGenerating, g.generate); err != nil {
		return nil, err
	}
	state.Stage = StageDone

	result := Project(state)
	g.observer.Completed(result)
	g.logger.Info("query answered", "route", result.Route, "source_tool", result.SourceTool, "evidence", state.Evidence.Len())
	return result, nil
}

func (g *Graph) advance(ctx context.Context, state *State, stage Stage, step func(context.Context, *State) error) error {
	state.Stage = stage
	start := time.Now()
	err := step(ctx, state)
	g.observer.StageFinished(stage, time.Since(start), err)
	if err != nil {
		g.logger.Error("pipeline stage failed", "stage", stage, "err", err)
	}
	return err
}

func (g *Graph) route(ctx context.Context, state *State) error {
	model, err := g.resources.Model(ctx)
	if err != nil {
		return fmt.Errorf("initialize language model: %w", err)
	}

	decision, err := g.router.Route(ctx, model, state.Query)
	if err != nil {
		return err
	}
	state.Decision = decision
	g.observer.Routed(decision)
	return nil
}

func (g *Graph) retrieve(ctx context.Context, state *State) error {
	switch state.Decision.Route {
	case core.RouteCourse:
		retriever, err := g.resources.Retriever(ctx)
		if err != nil {
			return fmt.Errorf("initialize catalog retriever: %w", err)
		}
		evidence, err := retrieveCourse(ctx, retriever, state.Query)
		if err != nil {
			return err
		}
		state.Evidence = evidence

	case core.RouteWeb:
		searcher, err := g.resources.Searcher(ctx)
		if err != nil {
			return fmt.Errorf("initialize web searcher: %w", err)
		}
		evidence, err := retrieveWeb(ctx, searcher, state.Query)
		if err != nil {
			return err
		}
		state.Evidence = evidence

	default:
		return fmt.Errorf("%w: %d", ErrUnknownRoute, state.Decision.Route)
	}
	return nil
}

func (g *Graph) generate(ctx context.Context, state *State) error {
	model, err := g.resources.Model(ctx)
	if err != nil {
		return fmt.Errorf("initialize language model: %w", err)
	}

	answer, err := g.generator.Generate(ctx, model, state.Query, state.Evidence)
	if err != nil {
		return err
	}
	state.Answer = answer
	return nil
}
