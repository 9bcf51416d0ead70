package server

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
)

// imageColumn resolves the caller-supplied image type to a static column name
// and response content type. Only the two known types resolve; everything
// else is rejected before any query text exists, so caller input never
// reaches SQL.
func imageColumn(imageType string) (column, contentType string, ok bool) {
	switch imageType {
	case "profileimage":
		return "profileimage", "image/png", true
	case "profilebackground":
		return "profilebackground", "image/jpeg", true
	}
	return "", "", false
}

// imageHandler handles GET /api/users/image/{useruuid}/{type}: the raw blob
// with a content type fixed per image kind, not introspected from the bytes.
func (cfg Config) imageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		useruuid := r.PathValue("useruuid")
		imageType := r.PathValue("type")

		column, contentType, ok := imageColumn(imageType)
		if !ok {
			http.Error(w, "Invalid type.", http.StatusBadRequest)
			return
		}

		// column comes from the fixed dispatch above, never from the request.
		var blob []byte
		err := cfg.DB.QueryRowContext(r.Context(),
			"SELECT "+column+" FROM users WHERE useruuid = $1", useruuid,
		).Scan(&blob)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Image not found.", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "fetch image query failed", err)
			http.Error(w, "Error fetching image.", http.StatusInternalServerError)
			return
		}
		if blob == nil {
			http.Error(w, "Image not found.", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(blob)
	})
}
