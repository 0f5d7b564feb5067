package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWebAppFixture lays out a published-database root with two built front
// ends and a stray file that must never appear in the listing.
func newWebAppFixture(t *testing.T) (*WebApp, *http.ServeMux) {
	t.Helper()
	root := t.TempDir()

	writeFile := func(elem ...string) {
		name := filepath.Join(append([]string{root}, elem...)...)
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte("content of "+filepath.Base(name)), 0o644))
	}
	writeFile(testTable, "dist", "index.html")
	writeFile(testTable, "dist", "css", "app.css")
	writeFile(testTable, "dist", "js", "app.js")
	writeFile("proust_flaubert", "dist", "index.html")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("not a database"), 0o644))

	// Distinct modification times make the listing order observable. Local
	// time keeps the rendered dates stable across test environments.
	older := time.Date(2023, 3, 15, 12, 0, 0, 0, time.Local)
	newer := time.Date(2024, 6, 5, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(filepath.Join(root, testTable), older, older))
	require.NoError(t, os.Chtimes(filepath.Join(root, "proust_flaubert"), newer, newer))

	wa := NewWebApp(root)
	mux := http.NewServeMux()
	wa.Register(mux)
	return wa, mux
}

func TestWebAppListing(t *testing.T) {
	_, mux := newWebAppFixture(t)

	rec := doGET(t, mux, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Text-PAIR databases")
	assert.Contains(t, body, testTable)
	assert.Contains(t, body, "Wed Mar 15 2023 12:00:00")
	assert.NotContains(t, body, "README.txt")

	// Newest database first.
	newest := strings.Index(body, "proust_flaubert")
	oldest := strings.Index(body, testTable)
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, oldest)
	assert.Less(t, newest, oldest)
}

func TestWebAppListing_EscapesNames(t *testing.T) {
	wa, mux := newWebAppFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(wa.root, "essais & co"), 0o755))

	rec := doGET(t, mux, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "essais &amp; co")
}

func TestWebAppAppRoutes(t *testing.T) {
	_, mux := newWebAppFixture(t)

	for _, path := range []string{
		"/" + testTable,
		"/" + testTable + "/search",
		"/" + testTable + "/time",
		"/" + testTable + "/group/42",
	} {
		rec := doGET(t, mux, path)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), "path %s", path)
		assert.Equal(t, "content of index.html", rec.Body.String(), "path %s", path)
	}
}

func TestWebAppAssets(t *testing.T) {
	_, mux := newWebAppFixture(t)

	rec := doGET(t, mux, "/"+testTable+"/css/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "content of app.css", rec.Body.String())

	rec = doGET(t, mux, "/"+testTable+"/js/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestWebAppNotFound(t *testing.T) {
	_, mux := newWebAppFixture(t)

	for _, path := range []string{
		"/missing_db",                      // no such database on disk
		"/" + testTable + "/css/nope.css",  // no such asset
		"/" + testTable + "/style/app.css", // unrecognized asset directory
		"/" + testTable + "/search/extra",  // too many segments for an app route
	} {
		rec := doGET(t, mux, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
	}
}

// Traversal sequences must be rejected before any disk access. The handler is
// invoked directly because the mux would canonicalize the path first.
func TestWebAppRejectsTraversal(t *testing.T) {
	wa, _ := newWebAppFixture(t)

	for _, path := range []string{
		"/" + testTable + "/css/../../../etc/passwd",
		"/../" + testTable,
		"/" + testTable + `/css/..\secret`,
		"/" + testTable + "//app.css",
	} {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		req.URL.Path = path
		rec := httptest.NewRecorder()
		wa.handle(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, "path %s", path)
	}
}

func TestWebAppMethodNotAllowed(t *testing.T) {
	_, mux := newWebAppFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/"+testTable, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
