package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
)

func writeQuestionnaire(t *testing.T, scale string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.yaml")
	content := "name: Custom Audit\nscale: " + scale + "\ncategories:\n" +
		"  - id: focus\n    title: Focus\n    questions:\n      - We know what matters most.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAuditQuestionnaire(t *testing.T) {
	t.Run("embedded by default", func(t *testing.T) {
		q, err := loadAuditQuestionnaire("")
		require.NoError(t, err)
		assert.Same(t, questionnaire.ClarityAudit(), q)
	})

	t.Run("five point file", func(t *testing.T) {
		q, err := loadAuditQuestionnaire(writeQuestionnaire(t, "likert_5"))
		require.NoError(t, err)
		assert.Equal(t, "Custom Audit", q.Name)
	})

	t.Run("seven point file rejected", func(t *testing.T) {
		_, err := loadAuditQuestionnaire(writeQuestionnaire(t, "likert_7"))
		assert.ErrorContains(t, err, "likert_5")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadAuditQuestionnaire(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestCommandsRegisterFlags(t *testing.T) {
	serve := NewServeCommand()
	assert.NotNil(t, serve.Flags().Lookup("listen"))
	assert.NotNil(t, serve.Flags().Lookup("no-scheduler"))

	process := NewProcessExpiredCommand()
	assert.NotNil(t, process.Flags().Lookup("dry-run"))
	assert.NotNil(t, process.Flags().Lookup("limit"))
	assert.NotNil(t, process.Flags().Lookup("archive-after"))
}
