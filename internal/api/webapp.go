package api

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tanglisha/text-pair/internal/logging"
)

// WebApp serves the published alignment databases: an HTML listing at the
// root and each database's built front end (dist/index.html plus css/js
// assets) under /{db}/. It owns the catch-all route, so anything it does not
// recognize is a 404.
type WebApp struct {
	root string
}

// NewWebApp returns a WebApp rooted at the published-database directory.
func NewWebApp(root string) *WebApp {
	return &WebApp{root: root}
}

// Register mounts the web app on the mux's catch-all route.
func (wa *WebApp) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", wa.handle)
}

// Front-end routes that all serve the single-page app's index.html. The
// app's client-side router takes over from there.
func isAppRoute(segments []string) bool {
	switch len(segments) {
	case 1:
		return true
	case 2:
		return segments[1] == "search" || segments[1] == "time"
	case 3:
		return segments[1] == "group"
	default:
		return false
	}
}

func (wa *WebApp) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/" {
		wa.listDatabases(w, r)
		return
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for _, segment := range segments {
		if !safeSegment(segment) {
			http.NotFound(w, r)
			return
		}
	}

	db := segments[0]
	switch {
	case isAppRoute(segments):
		wa.serveFile(w, r, "text/html; charset=utf-8", db, "dist", "index.html")
	case len(segments) == 3 && segments[1] == "css":
		wa.serveFile(w, r, "text/css; charset=utf-8", db, "dist", "css", segments[2])
	case len(segments) == 3 && segments[1] == "js":
		wa.serveFile(w, r, "application/javascript; charset=utf-8", db, "dist", "js", segments[2])
	default:
		http.NotFound(w, r)
	}
}

// safeSegment rejects path elements that could escape the web app root.
// Database and asset names never need dots-only names or separators.
func safeSegment(segment string) bool {
	if segment == "" || segment == "." || segment == ".." {
		return false
	}
	return !strings.ContainsAny(segment, `/\`)
}

func (wa *WebApp) serveFile(w http.ResponseWriter, r *http.Request, contentType string, elem ...string) {
	name := filepath.Join(append([]string{wa.root}, elem...)...)
	if _, err := os.Stat(name); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, name)
}

// listDatabases renders the published databases as an HTML table, newest
// first, matching the front page users bookmark.
func (wa *WebApp) listDatabases(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(wa.root)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to read web app root",
			slog.String("path", wa.root),
			slog.String("error", err.Error()),
		)
		http.Error(w, "database listing unavailable", http.StatusInternalServerError)
		return
	}

	type database struct {
		name     string
		modified time.Time
	}
	databases := make([]database, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		databases = append(databases, database{name: entry.Name(), modified: info.ModTime()})
	}
	sort.Slice(databases, func(i, j int) bool {
		return databases[i].modified.After(databases[j].modified)
	})

	var page strings.Builder
	page.WriteString("<h3>Text-PAIR databases</h3><hr/><table style='font-size: 130%'>")
	for _, db := range databases {
		fmt.Fprintf(&page, `<tr><td><a href="%s">%s</a></td><td>%s</td></tr>`,
			url.PathEscape(db.name),
			html.EscapeString(db.name),
			db.modified.Format("Mon Jan 2 2006 15:04:05"),
		)
	}
	page.WriteString("</table>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page.String()))
}
