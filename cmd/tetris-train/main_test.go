package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/tetrisrl/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--episodes", "3"}))

	t.Setenv("TETRISRL_EPISODES", "99")
	t.Setenv("TETRISRL_BATCH_SIZE", "8")
	t.Setenv("TETRISRL_LOG_FORMAT", "json")
	require.NoError(t, applyEnv(cmd.Flags()))

	episodes, _ := cmd.Flags().GetInt("episodes")
	batch, _ := cmd.Flags().GetInt("batch-size")
	format, _ := cmd.Flags().GetString("log-format")
	assert.Equal(t, 3, episodes, "flags on the command line win")
	assert.Equal(t, 8, batch)
	assert.Equal(t, "json", format)

	t.Setenv("TETRISRL_HIDDEN", "wide")
	assert.ErrorContains(t, applyEnv(newRootCmd().Flags()), "TETRISRL_HIDDEN")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, loadEnvFile(""))

	path := filepath.Join(t.TempDir(), "train.env")
	require.NoError(t, os.WriteFile(path, []byte("TETRISRL_SEED=77\n"), 0o600))
	t.Setenv("TETRISRL_SEED", "")
	require.NoError(t, os.Unsetenv("TETRISRL_SEED"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "77", os.Getenv("TETRISRL_SEED"))
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = newLogger("loud", "text")
	assert.Error(t, err)
	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	s, err := session.New(session.DefaultConfig(), rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	require.NoError(t, s.RunEpisodes(context.Background(), 2))

	r := NewReport(s, 3, 1, time.Second)
	assert.Len(t, r.Episodes, 2)
	assert.Equal(t, float64(r.Episodes[1].Score), r.Recent)
	total := 0
	for _, n := range r.Cleared {
		total += n
	}
	assert.Equal(t, r.Locks, total)

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "# Training Report")
	assert.Contains(t, out, s.ID().String())
	assert.Contains(t, out, "- #2: score")
	assert.Contains(t, out, "**DecisionSystem:**")
	assert.Contains(t, out, "## Final Board")

	r.Board = ""
	buf.Reset()
	require.NoError(t, r.Generate(&buf))
	assert.NotContains(t, buf.String(), "## Final Board")
}
