package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "pocketbook.db"))
	t.Setenv("STORAGE_SECRET", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("ID_SCHEME", "uuid")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out, &errOut)
	err := app.Run(append([]string{"pocketbook"}, args...))
	return out.String(), err
}

func TestAddListSummary(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "", "add", "--type", "income", "--amount", "1000", "--category", "Salary", "--date", "2024-03-01")
	require.NoError(t, err)
	_, err = run(t, "", "add", "-t", "expense", "-a", "12,50", "-c", "food", "-d", "2024-03-02", "-m", "lunch")
	require.NoError(t, err)

	out, err := run(t, "", "list", "--month", "2024-03")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "2024-03-02")
	assert.Contains(t, lines[1], "-12.50")
	assert.Contains(t, lines[2], "1000.00")

	out, err = run(t, "", "summary", "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "987.50")
	assert.Contains(t, out, "Food")

	out, err = run(t, "", "list", "--month", "2023-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions found.")

	out, err = run(t, "", "list", "--all")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	setTestEnv(t)
	_, err := run(t, "", "add", "--type", "gift", "--amount", "0", "--category", "Food")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type: please select a transaction type")
	assert.Contains(t, err.Error(), "amount:")
}

func TestAddDefaultsToToday(t *testing.T) {
	setTestEnv(t)
	_, err := run(t, "", "add", "--type", "expense", "--amount", "3", "--category", "Transport")
	require.NoError(t, err)

	out, err := run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, time.Now().Format("2006-01-02"))
}

func TestEditAndDelete(t *testing.T) {
	setTestEnv(t)
	out, err := run(t, "", "add", "--type", "expense", "--amount", "20", "--category", "Bills", "--date", "2024-03-03")
	require.NoError(t, err)
	id := strings.TrimSpace(strings.TrimPrefix(out, "added "))

	out, err = run(t, "", "edit", "--amount", "25", id)
	require.NoError(t, err)
	assert.Equal(t, "updated "+id+"\n", out)

	out, err = run(t, "", "list", "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "-25.00")
	assert.Contains(t, out, "Bills")

	_, err = run(t, "", "edit", "--amount", "1", "missing")
	assert.Error(t, err)

	out, err = run(t, "n\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")

	out, err = run(t, "y\n", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+id)

	out, err = run(t, "", "delete", "--yes", id)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to delete")
}

func TestCategories(t *testing.T) {
	out, err := run(t, "", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Types: income, expense")
	assert.Contains(t, out, "Education")
}

func TestWatchRequiresAMQP(t *testing.T) {
	setTestEnv(t)
	_, err := run(t, "", "watch")
	assert.EqualError(t, err, "AMQP_URL is not set")
}
