package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{
			name:     "shorter than width",
			input:    "https://a.b/c",
			maxWidth: 20,
			expected: "https://a.b/c",
		},
		{
			name:     "exactly width",
			input:    "abcdef",
			maxWidth: 6,
			expected: "abcdef",
		},
		{
			name:     "longer than width",
			input:    "https://picsum.photos/200/300/?blur=2",
			maxWidth: 12,
			expected: "https://p...",
		},
		{
			name:     "width too small to truncate",
			input:    "abcdef",
			maxWidth: 3,
			expected: "abcdef",
		},
		{
			name:     "multibyte runes",
			input:    "ÅÅÅÅÅÅÅÅ",
			maxWidth: 5,
			expected: "ÅÅ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	cachePath := GetCacheDBFilePath()
	historyPath := GetHistoryDBFilePath()
	assert.True(t, strings.HasSuffix(cachePath, ".contacts_cache.db"))
	assert.True(t, strings.HasSuffix(historyPath, ".contacts_history.db"))
	assert.NotEqual(t, cachePath, historyPath)
}
