package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"taskBoard/internal/app"
	"taskBoard/internal/calendar"
	"taskBoard/internal/config"
	"taskBoard/internal/session"
	"taskBoard/internal/viewmodel"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func startService(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.Worker.Enabled = false
	cfg.Auth.BcryptCost = 4
	cfg.Server.RateLimit = 0

	a, err := app.New(cfg, app.WithFs(afero.NewMemMapFs())).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

// TestRootCommand тестирует набор подкоманд
func TestRootCommand(t *testing.T) {
	assert.Equal(t, "tasks", rootCmd.Use)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"login", "register", "logout", "whoami", "list", "show", "add", "edit", "toggle", "delete", "calendar"} {
		assert.True(t, names[want], want)
	}
}

// TestCLI_Workflow тестирует полный сценарий работы через командную строку
func TestCLI_Workflow(t *testing.T) {
	url := startService(t)
	sessionFile := filepath.Join(t.TempDir(), "session.yml")
	global := []string{"--api-url", url, "--session-file", sessionFile}
	run := func(args ...string) (string, error) {
		return executeCommand(rootCmd, append(args, global...)...)
	}

	out, err := run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = run("list")
	assert.Error(t, err)

	out, err = run("register", "alice", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice (0 tasks)")

	out, err = run("add", "Buy milk", "--due", "2025-12-21", "--alarm", "7:30 AM", "--repeat", "Fri,Mon")
	require.NoError(t, err)
	id := regexp.MustCompile(`Added task (\d+)`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	out, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2025-12-21")
	assert.Contains(t, out, "7:30 AM")
	assert.Contains(t, out, "Mon, Fri")

	out, err = run("show", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Status:")
	assert.Contains(t, out, "Open")

	out, err = run("calendar", "2025-12", "--day", "21")
	require.NoError(t, err)
	assert.Contains(t, out, "December 2025")
	assert.Contains(t, out, "[21]*")
	assert.Contains(t, out, "Buy milk")

	out, err = run("edit", id[1], "--alarm", "", "--detail", "2 liters")
	require.NoError(t, err)
	assert.Contains(t, out, "2 liters")
	assert.Regexp(t, `Alarm:\s+-`, out)

	out, err = run("toggle", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "is now done")

	out, err = run("list", "--completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")

	out, err = run("delete", id[1])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task")

	out, err = run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out alice")

	out, err = run("login", "alice", "--password", "wrong")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid username or password")
}

// TestCLI_RetriesInitialLoad тестирует повтор загрузки задач после ошибки
func TestCLI_RetriesInitialLoad(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"Failed to fetch tasks"}`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":4,"title":"Water plants","is_completed":false,
"created_at":"2025-12-01T10:00:00Z","updated_at":"2025-12-01T10:00:00Z","repeat_days":[]}]`)
	}))
	t.Cleanup(srv.Close)

	sessionFile := filepath.Join(t.TempDir(), "session.yml")
	require.NoError(t, session.NewStore(appFs, sessionFile).Save(session.Session{UserID: "1", Username: "alice"}))

	out, err := executeCommand(rootCmd, "list", "--completed=false", "--api-url", srv.URL, "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Water plants")
	assert.Equal(t, 2, calls)
}

// TestPrintCalendar тестирует отрисовку пустого дня
func TestPrintCalendar(t *testing.T) {
	m := calendar.Month{Year: 2026, Month: time.February}
	v := calendar.NewView([]viewmodel.Task{}, m, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), 3, calendar.PlaceOptions{})

	var buf bytes.Buffer
	printCalendar(&buf, v)
	assert.Contains(t, buf.String(), "February 2026")
	assert.Contains(t, buf.String(), "[ 3]")
	assert.Contains(t, buf.String(), calendar.NoTasksMessage)
}
