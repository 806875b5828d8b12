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
	"time"

	"github.com/poiesic/intellicourse/core"
)

// Observer receives pipeline events. Implementations must be safe for
// concurrent use since runs execute in parallel.
type Observer interface {
	// Routed is called once per run with the routing decision.
	Routed(decision Decision)
	// StageFinished is called after each stage with its duration and error.
	StageFinished(stage Stage, elapsed time.Duration, err error)
	// Completed is called when a run produces a result.
	Completed(result *core.ConversationResult)
}

type noopObserver struct{}

func (noopObserver) Routed(Decision)                           {}
func (noopObserver) StageFinished(Stage, time.Duration, error) {}
func (noopObserver) Completed(*core.ConversationResult)        {}
