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


package langchain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/intellicourse/ai"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoChoices is returned when the model responds without any completion.
var ErrNoChoices = errors.New("model returned no choices")

// ChatModel implements ai.LanguageModel on top of a langchaingo llms.Model.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newChatModel wraps an existing langchaingo model.
func newChatModel(client llms.Model, temperature float64) *ChatModel {
	return &ChatModel{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "langchain-chat"),
	}
}

// NewChatModel wraps an existing langchaingo model.
//
// Returns ai.LanguageModel interface to enforce abstraction.
func NewChatModel(client llms.Model, temperature float64) ai.LanguageModel {
	return newChatModel(client, temperature)
}

// Complete sends the system instruction and user content as a two-message
// conversation and returns the first choice's raw content.
func (m *ChatModel) Complete(ctx context.Context, systemInstruction, userContent string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemInstruction),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userContent),
			},
		},
	}

	m.logger.Debug("generating completion", "length", len(userContent))
	response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(m.temperature))
	if err != nil {
		m.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", ErrNoChoices
	}

	return response.Choices[0].Content, nil
}
