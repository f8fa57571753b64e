package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/ragdesk/internal/core/config"
)

func findItem(t *testing.T, result Result, label string) CheckItem {
	t.Helper()
	for _, item := range result.Items {
		if item.Label == label {
			return item
		}
	}
	t.Fatalf("item %q not found in %+v", label, result.Items)
	return CheckItem{}
}

func TestConfigCheck_NilConfig(t *testing.T) {
	result := NewConfigCheck(nil, "").Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}

func TestConfigCheck_DefaultsWithoutFile(t *testing.T) {
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), "missing.yaml")

	result := NewConfigCheck(&cfg, path).Run(context.Background())

	src := findItem(t, result, "Config file")
	assert.Equal(t, StatusPass, src.Status)
	assert.Contains(t, src.Detail, "built-in defaults")

	assert.Equal(t, StatusPass, findItem(t, result, "Config valid").Status)

	// The shared default session id is always flagged.
	assert.Equal(t, StatusWarn, findItem(t, result, "Session (session_id)").Status)
}

func TestConfigCheck_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  url: ftp://nope\n"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Backend.URL = "ftp://nope"

	result := NewConfigCheck(&cfg, path).Run(context.Background())

	assert.Equal(t, StatusPass, findItem(t, result, "Config file").Status)

	_, _, failed := Summary([]Result{result})
	assert.Positive(t, failed)
}
