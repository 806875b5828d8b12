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

	"github.com/poiesic/intellicourse/core"
)

// Stage is a state of the pipeline state machine.
type Stage int

const (
	StageRouting Stage = iota
	StageRetrieving
	StageGenerating
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRouting:
		return "routing"
	case StageRetrieving:
		return "retrieving"
	case StageGenerating:
		return "generating"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// CatalogRetriever returns catalog passages for a query, most relevant first.
type CatalogRetriever interface {
	Retrieve(ctx context.Context, query string) (core.CatalogEvidence, error)
}

// State is threaded through the stages of one Run. It is never shared
// between queries.
type State struct {
	Query    string
	Stage    Stage
	Decision Decision
	Evidence core.Evidence
	Answer   string
}

// SourceTool reports which retrieval stage produced the evidence.
// It is zero before retrieval.
func (s *State) SourceTool() core.SourceTool {
	if s.Evidence == nil {
		return 0
	}
	return s.Evidence.SourceTool()
}
