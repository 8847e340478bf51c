package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreatmentsCommandDefaults(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"treatments"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "vertical_blinds")
	assert.Contains(t, out.String(), "Vanes(both)")
}

func TestTreatmentsCommandRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("treatments:\n  curtains:\n    tabs: []\n"), 0o600))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"treatments", path})
	assert.Error(t, rootCmd.Execute())
}

func TestImportDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Category,Subcategory\nLinen,fabric,curtain_fabric\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"import", "--dry-run", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "1 rows would be imported")
}
