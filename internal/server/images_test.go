package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestImageColumn(t *testing.T) {
	tests := []struct {
		imageType   string
		wantColumn  string
		wantContent string
		wantOK      bool
	}{
		{"profileimage", "profileimage", "image/png", true},
		{"profilebackground", "profilebackground", "image/jpeg", true},
		{"bogus", "", "", false},
		{"", "", "", false},
		{"PROFILEIMAGE", "", "", false},
		{"password", "", "", false},
		{"profileimage; DROP TABLE users", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.imageType, func(t *testing.T) {
			column, contentType, ok := imageColumn(tt.imageType)
			if ok != tt.wantOK {
				t.Fatalf("imageColumn(%q) ok = %v, want %v", tt.imageType, ok, tt.wantOK)
			}
			if column != tt.wantColumn {
				t.Errorf("column = %q, want %q", column, tt.wantColumn)
			}
			if contentType != tt.wantContent {
				t.Errorf("contentType = %q, want %q", contentType, tt.wantContent)
			}
		})
	}
}

func TestImageHandler_InvalidType(t *testing.T) {
	// The allow-list rejects before any query, so no database is needed.
	cfg := Config{}
	mux := http.NewServeMux()
	mux.Handle("GET /api/users/image/{useruuid}/{type}", cfg.imageHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/users/image/abc12345/bogus", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for type outside the allow-list, got %d", rr.Code)
	}
}
