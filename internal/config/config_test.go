package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/table"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "startup-eda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, EncodingLatin1, cfg.Pipeline.Encoding)
	assert.Equal(t, 4.0, cfg.Pipeline.OutlierThreshold)
	assert.Equal(t, DeviationSample, cfg.Pipeline.OutlierDeviation)
	assert.Len(t, cfg.Pipeline.DropColumns, 25)
	assert.Equal(t, []string{"closed_at"}, cfg.Pipeline.KeepMissingColumns)
	assert.Equal(t, []string{"state_code", "city", "category_code", "founded_year", "status"}, cfg.Pipeline.CategoricalColumns)
	assert.Equal(t, []string{"founded_at", "first_funding_at", "last_funding_at"}, cfg.Pipeline.NormalizeDateColumns)
	assert.Equal(t, "status", cfg.Analysis.TargetColumn)
	assert.Equal(t, 10, cfg.Analysis.TopN)

	require.NoError(t, cfg.Validate())
}

func TestDefault_ReturnsIndependentSlices(t *testing.T) {
	a := Default()
	b := Default()

	a.Pipeline.DropColumns[0] = "mutated"
	assert.Equal(t, "Unnamed: 0", b.Pipeline.DropColumns[0])
	assert.Equal(t, "Unnamed: 0", DefaultDropColumns[0])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "file overrides defaults",
			file: `
pipeline:
  outlier_threshold: 3
  outlier_deviation: population
  tolerant: true
analysis:
  top_n: 5
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3.0, cfg.Pipeline.OutlierThreshold)
				assert.Equal(t, DeviationPopulation, cfg.Pipeline.OutlierDeviation)
				assert.True(t, cfg.Pipeline.Tolerant)
				assert.Equal(t, 5, cfg.Analysis.TopN)
				// untouched values keep their defaults
				assert.Equal(t, EncodingLatin1, cfg.Pipeline.Encoding)
				assert.Len(t, cfg.Pipeline.DropColumns, 25)
			},
		},
		{
			name: "environment overrides file",
			file: `
pipeline:
  outlier_threshold: 3
`,
			env: map[string]string{
				"EDA_PIPELINE_OUTLIER_THRESHOLD": "2.5",
				"EDA_PIPELINE_DROP_COLUMNS":      "latitude,longitude",
				"EDA_LOGGING_LEVEL":              "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2.5, cfg.Pipeline.OutlierThreshold)
				assert.Equal(t, []string{"latitude", "longitude"}, cfg.Pipeline.DropColumns)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "non positive threshold rejected",
			file: `
pipeline:
  outlier_threshold: 0
`,
			wantErr: true,
		},
		{
			name: "unknown deviation mode rejected",
			file: `
pipeline:
  outlier_deviation: robust
`,
			wantErr: true,
		},
		{
			name: "unknown encoding rejected",
			file: `
pipeline:
  encoding: cp1252
`,
			wantErr: true,
		},
		{
			name: "imputed and kept missing column rejected",
			file: `
pipeline:
  impute_columns: [closed_at]
  keep_missing_columns: [closed_at]
`,
			wantErr: true,
		},
		{
			name: "identical outcome labels rejected",
			file: `
analysis:
  positive_label: closed
  negative_label: closed
`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "pipeline: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfigFile(t, tt.file)

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig), "want CONFIG error, got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestValidate_LoggingNormalisation(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "logs/startup-eda.log", cfg.Logging.FilePath)
}

func TestValidate_EncodingsFollowLoader(t *testing.T) {
	tests := []struct {
		encoding string
		wantErr  bool
	}{
		{encoding: table.EncodingLatin1},
		{encoding: table.EncodingUTF8},
		{encoding: "cp1252", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			cfg := Default()
			cfg.Pipeline.Encoding = tt.encoding
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
