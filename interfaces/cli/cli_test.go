package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"braingraph/application/ports"
	"braingraph/domain/layout"
	"braingraph/infrastructure/backend"
	pkgerrors "braingraph/pkg/errors"
)

func init() {
	disableColor()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get(backend.PathLocal, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{
			"nodes": []map[string]interface{}{
				{"id": "note-1", "title": "Start"},
				{"id": "note-2", "title": "Second"},
			},
			"edges": []map[string]interface{}{
				{"source": "note-1", "target": "note-2", "type": "wikilink", "weight": 0.9},
			},
		})
	})
	r.Get(backend.PathSearch, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{"nodes": []map[string]interface{}{
			{"id": "tag-5", "title": "golang"},
			{"id": "note-7", "title": "Go channels"},
		}})
	})
	r.Get(backend.PathStats, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{
			"total_nodes": 1200,
			"total_edges": 30,
			"node_counts": map[string]int{"note": 900, "tag": 300},
			"communities": 3,
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command with a fresh backend and preferences file
func run(t *testing.T, srv *httptest.Server, prefs string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PREFERENCES_BACKEND", "file")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--backend", srv.URL, "--prefs", prefs, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv, filepath.Join(t.TempDir(), "prefs.yaml"), "search", "go")

	require.NoError(t, err)
	assert.Contains(t, out, "tag-5")
	assert.Contains(t, out, "golang")
	assert.Contains(t, out, "2 results")
}

func TestStatsCommand(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv, filepath.Join(t.TempDir(), "prefs.yaml"), "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "1,200")
	lines := strings.Split(out, "\n")
	var noteLine, tagLine int
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "note ") {
			noteLine = i
		}
		if strings.HasPrefix(strings.TrimSpace(l), "tag ") {
			tagLine = i
		}
	}
	assert.Less(t, noteLine, tagLine)
}

func TestRenderCommand(t *testing.T) {
	srv := newBackend(t)
	dir := t.TempDir()
	outFile := filepath.Join(dir, "explore.png")

	out, err := run(t, srv, filepath.Join(dir, "prefs.yaml"),
		"render", "explore", "--node", "note-1", "--width", "200", "--height", "120", "-o", outFile)

	require.NoError(t, err)
	assert.Contains(t, out, "ready")
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPrefsCommandSavesValues(t *testing.T) {
	srv := newBackend(t)
	prefsFile := filepath.Join(t.TempDir(), "prefs.yaml")

	out, err := run(t, srv, prefsFile, "prefs", "--theme", "dark", "--preset", "spread")

	require.NoError(t, err)
	assert.Contains(t, out, "saved")
	raw, err := os.ReadFile(prefsFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "theme: dark")
	assert.Contains(t, string(raw), "preset: spread")
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"id", "title"}, [][]string{{"note-1", "Start"}, {"tag-12"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  ID      TITLE", lines[0])
	assert.Equal(t, "  note-1  Start", lines[2])
	assert.Equal(t, "  tag-12", lines[3])
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"id"}, nil)

	assert.Equal(t, "  (none)\n", buf.String())
}

func TestCountRows_SortsByCountThenName(t *testing.T) {
	rows := countRows(map[string]int{"tag": 3, "note": 1200, "entity": 3})

	assert.Equal(t, [][]string{{"note", "1,200"}, {"entity", "3"}, {"tag", "3"}}, rows)
}

func TestPrintPresets_MarksSavedPreset(t *testing.T) {
	var buf bytes.Buffer

	printPresets(&buf, layout.NewRegistry(), "spread")

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "spread") {
			assert.True(t, strings.HasSuffix(line, "saved"))
			return
		}
	}
	t.Fatal("spread preset not listed")
}

func TestPrintPrefs_Defaults(t *testing.T) {
	var buf bytes.Buffer

	printPrefs(&buf, ports.Preferences{Theme: "dark"}, false)

	out := buf.String()
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "dark")
	assert.NotContains(t, out, "saved")
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"app error", pkgerrors.NewUnavailableError("graph-backend", errors.New("open")), []string{"error:", "retry shortly"}},
		{"plain error", errors.New("boom"), []string{"error: boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}
