package frontend

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// NewSPAHandler serves the built frontend from fsys. Paths that are not a
// file get index.html so client-side routes load the app. A nil fsys serves
// 404 for everything.
func NewSPAHandler(fsys fs.FS) http.Handler {
	if fsys == nil {
		return http.NotFoundHandler()
	}
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		if path.Ext(name) != "" {
			// Missing assets stay 404 rather than returning the app shell.
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, fsys, "index.html")
	})
}
