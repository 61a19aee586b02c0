package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args against db and returns stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--db", db))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_CatalogToQuiz(t *testing.T) {
	t.Setenv("GAMEIQ_AI_PROVIDER", "none")
	t.Setenv("GAMEIQ_LOG_LEVEL", "error")
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, db, "catalog", "import", filepath.Join("..", "data", "catalog"))
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted: 5")

	// Importing again skips everything.
	out, err = run(t, db, "catalog", "import", filepath.Join("..", "data", "catalog", "soccer__goalkeeper_core.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped:  5")

	out, err = run(t, db, "user", "set-tier", "u1", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "u1 is now on tier BASIC")

	_, err = run(t, db, "user", "set-tier", "u1", "gold")
	assert.Error(t, err)

	out, err = run(t, db, "quiz", "core", "--user", "u1", "--sport", "soccer", "--position", "goalkeeper")
	require.NoError(t, err)
	assert.Contains(t, out, "Core Soccer Goalkeeper Quiz")

	out, err = run(t, db, "quiz", "can-generate", "--user", "u1", "--sport", "soccer", "--position", "goalkeeper")
	require.NoError(t, err)
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "15 questions per generated quiz, AI generation off")

	_, err = run(t, db, "quiz", "generate", "--user", "u1", "--sport", "soccer", "--position", "goalkeeper")
	assert.Error(t, err, "core quiz not passed yet")

	out, err = run(t, db, "quiz", "sessions", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Core Soccer Goalkeeper Quiz")

	out, err = run(t, db, "usage", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "AI usage for u1")
	assert.Contains(t, out, "$0.00 of $3.00")
}

func TestCLI_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "gameiq")
}
