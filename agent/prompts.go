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

// Prompt text for the two model calls. The router reply is parsed as a
// single token; anything else goes through the keyword fallback.
const (
	routerInstruction = `You route student questions for a university course assistant.
Classify the question as one of:
- course : about specific university courses, prerequisites, schedules, instructors, departments, credits, or catalog content.
- web    : about general knowledge, careers, the job market, or anything the course catalog cannot answer.
Reply with exactly one lowercase token: course or web.`

	generationInstruction = `You are IntelliCourse, an assistant that answers student questions from retrieved course catalog context.
Rules:
- For course-specific questions, use only the provided context.
- If the context is not enough to answer, say that you do not have enough information and suggest asking the registrar or an academic advisor.
- Cite each source inline as (source: <source>, p.<page>).
- Be concise and factual. Do not speculate.`

	// NoContext stands in for the context block when retrieval returned nothing.
	NoContext = "NO_CONTEXT"

	userContentTemplate = "Question: %s\n\nContext:\n%s\n\nAnswer:"
)
