package shopping

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/core/ai/cache"
	aiservice "meal-planner/internal/core/ai/service"
	"meal-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	content string
	err     error
	prompts []string
}

func (f *fakeCompleter) ProcessRequest(_ context.Context, prompt string) (*aiservice.Response, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &aiservice.Response{Content: f.content}, nil
}

func TestAICategorizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		err     error
		want    string
		wantErr bool
	}{
		{name: "json answer", content: `{"section": "Spices & Seasonings"}`, want: "Spices & Seasonings"},
		{name: "fenced json with other case", content: "```json\n{\"section\": \"spices & seasonings\"}\n```", want: "Spices & Seasonings"},
		{name: "plain section name", content: " Produce ", want: "Produce"},
		{name: "unknown section", content: `{"section": "Garden Center"}`, want: OtherSection, wantErr: true},
		{name: "broken json", content: `{"section": }`, want: OtherSection, wantErr: true},
		{name: "upstream error", err: errors.New("timeout"), want: OtherSection, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ai := &fakeCompleter{content: tc.content, err: tc.err}
			got, err := NewAICategorizer(ai, nil, nil).Categorize(context.Background(), "Sumac")
			assert.Equal(t, tc.want, got)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAICategorizerPrompt(t *testing.T) {
	t.Parallel()

	ai := &fakeCompleter{content: "Produce"}
	_, err := NewAICategorizer(ai, nil, nil).Categorize(context.Background(), "  Dragon   Fruit ")
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], `"dragon fruit"`)
	for _, section := range DefaultSectionTable().Names() {
		assert.Contains(t, ai.prompts[0], section)
	}
}

func TestAICategorizerUsesCache(t *testing.T) {
	t.Parallel()

	manager := cache.NewManager(&config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(func() { _ = manager.Close() })

	ai := &fakeCompleter{content: `{"section": "Spices & Seasonings"}`}
	categorizer := NewAICategorizer(ai, manager, nil)

	for i := 0; i < 3; i++ {
		got, err := categorizer.Categorize(context.Background(), "sumac")
		require.NoError(t, err)
		assert.Equal(t, "Spices & Seasonings", got)
	}
	assert.Len(t, ai.prompts, 1)
}

func TestAICategorizerEmptyName(t *testing.T) {
	t.Parallel()

	ai := &fakeCompleter{content: "Produce"}
	got, err := NewAICategorizer(ai, nil, nil).Categorize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, OtherSection, got)
	assert.Empty(t, ai.prompts)
}
