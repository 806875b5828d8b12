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
	"strings"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/core"
)

// courseKeywords select RouteCourse when the model reply is unusable.
var courseKeywords = []string{"course", "prereq", "credit", "catalog", "syllabus", "department"}

// Decision is the routing outcome for one query.
type Decision struct {
	Route core.Route
	// Fallback is true when the keyword heuristic decided the route.
	Fallback bool
	// Reply is the normalized model output.
	Reply string
}

// Router classifies queries into a Route.
type Router struct {
	logger *slog.Logger
}

// NewRouter creates a router. A nil logger uses slog.Default().
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Route asks model to classify query. A reply that is not exactly "course"
// or "web" after trimming and lowercasing is resolved by FallbackRoute.
// Only a failed model call is an error.
func (r *Router) Route(ctx context.Context, model ai.LanguageModel, query string) (Decision, error) {
	reply, err := model.Complete(ctx, routerInstruction, query)
	if err != nil {
		r.logger.Error("route classification failed", "err", err)
		return Decision{}, fmt.Errorf("%w: %w", core.ErrRouting, err)
	}

	normalized := strings.ToLower(strings.TrimSpace(reply))
	if route, ok := core.ParseRoute(normalized); ok {
		return Decision{Route: route, Reply: normalized}, nil
	}

	route := FallbackRoute(query)
	r.logger.Debug("unrecognized route reply, using keyword fallback", "reply", normalized, "route", route)
	return Decision{Route: route, Fallback: true, Reply: normalized}, nil
}

// FallbackRoute returns RouteCourse when the lowercased query contains a
// catalog keyword and RouteWeb otherwise.
func FallbackRoute(query string) core.Route {
	lower := strings.ToLower(query)
	for _, keyword := range courseKeywords {
		if strings.Contains(lower, keyword) {
			return core.RouteCourse
		}
	}
	return core.RouteWeb
}
