package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	faqerrors "github.com/tutorbase/faqsearch/internal/errors"
	"github.com/tutorbase/faqsearch/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.4, cfg.Index.Threshold)
	assert.Equal(t, 100, cfg.Index.Distance)
	assert.True(t, cfg.Index.IgnoreLocation)
	assert.Equal(t, 2, cfg.Index.MinMatchLength)
	assert.Equal(t, 50, cfg.Index.MaxResults)
	assert.InDelta(t, 1.0, cfg.Index.Weights.Total(), 1e-9)

	assert.True(t, cfg.Boosts.BoostRecent)
	assert.True(t, cfg.Boosts.BoostFeatured)
	assert.Equal(t, 0.9, cfg.Boosts.FeaturedMultiplier)
	assert.Equal(t, 90, cfg.Boosts.RecencyWindowDays)

	assert.Equal(t, 150, cfg.Session.DebounceMs)
	assert.Equal(t, 2, cfg.Session.MinQueryLength)
}

func TestFieldWeightsFor(t *testing.T) {
	w := Default().Index.Weights
	assert.Equal(t, 0.40, w.For(types.FieldQuestion))
	assert.Equal(t, 0.30, w.For(types.FieldAnswer))
	assert.Equal(t, 0.15, w.For(types.FieldKeywords))
	assert.Equal(t, 0.10, w.For(types.FieldTags))
	assert.Equal(t, 0.03, w.For(types.FieldCategory))
	assert.Equal(t, 0.02, w.For(types.FieldSubcategory))
	assert.Equal(t, 0.0, w.For(types.MatchField("unknown")))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Index.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Index.Threshold = -0.1 }},
		{"zero min match length", func(c *Config) { c.Index.MinMatchLength = 0 }},
		{"zero max results", func(c *Config) { c.Index.MaxResults = 0 }},
		{"zero weights", func(c *Config) { c.Index.Weights = FieldWeights{} }},
		{"zero featured multiplier", func(c *Config) { c.Boosts.FeaturedMultiplier = 0 }},
		{"zero recency window", func(c *Config) { c.Boosts.RecencyWindowDays = 0 }},
		{"negative debounce", func(c *Config) { c.Session.DebounceMs = -1 }},
		{"zero min query length", func(c *Config) { c.Session.MinQueryLength = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *faqerrors.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTOMLLayersOverDefaults(t *testing.T) {
	body := `
[index]
threshold = 0.25
max_results = 20

[index.weights]
question = 0.5
answer = 0.3
keywords = 0.1
tags = 0.05
category = 0.03
subcategory = 0.02

[boosts]
boost_featured = false
featured_multiplier = 0.8

[session]
debounce_ms = 300
`
	path := filepath.Join(t.TempDir(), "faqsearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Index.Threshold)
	assert.Equal(t, 20, cfg.Index.MaxResults)
	assert.Equal(t, 0.5, cfg.Index.Weights.Question)
	assert.False(t, cfg.Boosts.BoostFeatured)
	assert.Equal(t, 0.8, cfg.Boosts.FeaturedMultiplier)
	assert.Equal(t, 300, cfg.Session.DebounceMs)

	// Unset sections keep defaults.
	assert.Equal(t, 2, cfg.Session.MinQueryLength)
	assert.Equal(t, 90, cfg.Boosts.RecencyWindowDays)
}

func TestLoadTOMLInvalidValuesRejected(t *testing.T) {
	body := `
[index]
threshold = 3.0
`
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadKDL(t *testing.T) {
	body := `
index {
    threshold 0.3
    distance 200
    ignore_location false
    min_match_length 3
    max_results 25
    weights {
        question 0.45
        answer 0.25
        keywords 0.15
        tags 0.10
        category 0.03
        subcategory 0.02
    }
}

boosts {
    boost_recent false
    featured_multiplier 0.85
    recency_window_days 30
}

session {
    debounce_ms 250
    min_query_length 3
}
`
	path := filepath.Join(t.TempDir(), ".faqsearch.kdl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Index.Threshold)
	assert.Equal(t, 200, cfg.Index.Distance)
	assert.False(t, cfg.Index.IgnoreLocation)
	assert.Equal(t, 3, cfg.Index.MinMatchLength)
	assert.Equal(t, 25, cfg.Index.MaxResults)
	assert.Equal(t, 0.45, cfg.Index.Weights.Question)
	assert.False(t, cfg.Boosts.BoostRecent)
	assert.Equal(t, 0.85, cfg.Boosts.FeaturedMultiplier)
	assert.Equal(t, 30, cfg.Boosts.RecencyWindowDays)
	assert.Equal(t, 250, cfg.Session.DebounceMs)
	assert.Equal(t, 3, cfg.Session.MinQueryLength)

	// Sections absent from the file keep defaults.
	assert.True(t, cfg.Session.AutoSearch)
	assert.True(t, cfg.Boosts.BoostFeatured)
}
