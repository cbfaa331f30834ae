package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GTDBOT_STORAGE_ROOT", filepath.Join(dir, "var"))
	t.Setenv("GTDBOT_REMINDER_ENABLED", "false")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestRunCapturesAndListsInbox(t *testing.T) {
	setupWorkspace(t)

	out, err := runCLI(t, "run", "--user", "42", "--plain", "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, `Task captured: "Buy milk"`)

	out, err = runCLI(t, "run", "--user", "42", "--plain", "inbox")
	require.NoError(t, err)
	assert.Contains(t, out, "Inbox")
	assert.Contains(t, out, "**#1**  \nBuy milk")

	out, err = runCLI(t, "users")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestUsersLongShowsLastUpdate(t *testing.T) {
	setupWorkspace(t)

	_, err := runCLI(t, "run", "--user", "42", "--plain", "add", "Buy", "milk")
	require.NoError(t, err)

	out, err := runCLI(t, "users", "--long")
	require.NoError(t, err)
	assert.Contains(t, out, "Last Updated")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "UTC")
	assert.NotContains(t, out, "unknown")
}

func TestRunUnknownCommandIsNotAnError(t *testing.T) {
	setupWorkspace(t)

	out, err := runCLI(t, "run", "--user", "42", "--plain", "frobnicate")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown command")
}

func TestRunRequiresUser(t *testing.T) {
	setupWorkspace(t)

	_, err := runCLI(t, "run", "inbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestLogsAndExport(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runCLI(t, "logs", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "No activity logs found.")

	_, err = runCLI(t, "run", "--user", "7", "--plain", "add", "Call", "Bob")
	require.NoError(t, err)

	out, err = runCLI(t, "logs", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "TASK_CAPTURED")

	out, err = runCLI(t, "export", "--user", "7")
	require.NoError(t, err)
	assert.Contains(t, out, `"eventType": "TASK_CAPTURED"`)

	target := filepath.Join(dir, "7.csv")
	_, err = runCLI(t, "export", "--user", "7", "--format", "csv", "--output", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "timestamp,userId,eventType,details"))

	_, err = runCLI(t, "export", "--user", "7", "--format", "xml")
	require.Error(t, err)
}

func TestRemindOnce(t *testing.T) {
	setupWorkspace(t)

	_, err := runCLI(t, "run", "--user", "1", "add", "a")
	require.NoError(t, err)
	_, err = runCLI(t, "run", "--user", "2", "add", "b")
	require.NoError(t, err)

	out, err := runCLI(t, "remind", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "weekly reminder scheduled for 2 user(s)")
}

func TestSQLiteDriver(t *testing.T) {
	dir := setupWorkspace(t)
	t.Setenv("GTDBOT_STORAGE_DRIVER", "sqlite")
	t.Setenv("GTDBOT_STORAGE_SQLITE_PATH", filepath.Join(dir, "db", "gtd.db"))

	_, err := runCLI(t, "run", "--user", "9", "--plain", "add", "Water", "plants")
	require.NoError(t, err)

	out, err := runCLI(t, "run", "--user", "9", "--plain", "process", "1", "nextaction")
	require.NoError(t, err)
	assert.Contains(t, out, "Task moved to Next Actions")

	out, err = runCLI(t, "run", "--user", "9", "--plain", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Water plants")

	_, err = os.Stat(filepath.Join(dir, "db", "gtd.db"))
	require.NoError(t, err)
}

func TestConfigFileIsHonoured(t *testing.T) {
	dir := setupWorkspace(t)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("prefix: \"!do\"\n"), 0o644))

	out, err := runCLI(t, "--config", cfgPath, "run", "--user", "3", "--plain", "frobnicate")
	require.NoError(t, err)
	assert.Contains(t, out, "!do help")

	_, err = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "users")
	require.Error(t, err)
}
