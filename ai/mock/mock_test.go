package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLanguageModel(t *testing.T) {
	ctx := context.Background()

	t.Run("returns responses in order", func(t *testing.T) {
		m := NewMockLanguageModel("course", "answer")
		m.DefaultResponse = "fallback"

		first, _ := m.Complete(ctx, "s1", "u1")
		second, _ := m.Complete(ctx, "s2", "u2")
		third, _ := m.Complete(ctx, "s3", "u3")

		assert.Equal(t, "course", first)
		assert.Equal(t, "answer", second)
		assert.Equal(t, "fallback", third)
		assert.Equal(t, 3, m.CallCount())
		assert.Equal(t, Call{SystemInstruction: "s2", UserContent: "u2"}, m.Calls()[1])
	})

	t.Run("custom func", func(t *testing.T) {
		m := NewMockLanguageModel()
		boom := errors.New("boom")
		m.CompleteFunc = func(ctx context.Context, s, u string) (string, error) {
			return "", boom
		}

		_, err := m.Complete(ctx, "s", "u")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, m.CallCount())

		m.Reset()
		assert.Equal(t, 0, m.CallCount())
		out, err := m.Complete(ctx, "s", "u")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("concurrent calls", func(t *testing.T) {
		m := NewMockLanguageModel()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = m.Complete(ctx, "s", "u")
			}()
		}
		wg.Wait()
		assert.Equal(t, 20, m.CallCount())
	})
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimension)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)

	batch, err := m.EmbedTexts(ctx, []string{"hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, a, batch[0])
	assert.Equal(t, 3, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProviderWithServices(NewMockLanguageModel("x"), NewMockEmbedder())

	out, err := p.LanguageModel().Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, 1, p.GetMockModel().CallCount())

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())

	assert.NotNil(t, NewMockProvider().Embedder())
}
