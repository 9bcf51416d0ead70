package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// uploadsHandler serves files from the persistent upload directory under
// /uploads/. Directories are not listed; anything that is not a plain file
// is a 404.
func (cfg Config) uploadsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/uploads/")
		if name == "" || strings.Contains(name, "..") {
			http.NotFound(w, r)
			return
		}

		path := filepath.Join(cfg.UploadDir, filepath.FromSlash(name))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, path)
	})
}
