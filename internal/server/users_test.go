package server

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
)

func TestNewUserID_Length(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := newUserID()
		if len(id) != 8 {
			t.Fatalf("newUserID() = %q, want 8 characters", id)
		}
	}
}

func TestImageURL(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:5000"}

	if got := cfg.imageURL("abc12345", "profileimage", false); got != nil {
		t.Errorf("expected nil URL for absent blob, got %q", *got)
	}

	got := cfg.imageURL("abc12345", "profileimage", true)
	if got == nil {
		t.Fatal("expected URL for present blob, got nil")
	}
	want := "http://localhost:5000/api/users/image/abc12345/profileimage"
	if *got != want {
		t.Errorf("imageURL = %q, want %q", *got, want)
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	complete := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"phone":    "555-0100",
		"password": "hunter2",
	}

	for _, missing := range []string{"username", "email", "phone", "password"} {
		t.Run("missing "+missing, func(t *testing.T) {
			values := make(map[string]string)
			for k, v := range complete {
				if k != missing {
					values[k] = v
				}
			}

			tempDir := t.TempDir()
			// Validation runs before any SQL, so no database is needed.
			cfg := Config{BaseURL: "http://localhost:5000", TempDir: tempDir}
			handler := cfg.createUserHandler(NewTempUploadStore(tempDir))

			req := multipartRequest(t, values, []testFilePart{
				{field: "profileimage", filename: "a.png", contentType: "image/png", data: []byte("x")},
			})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != 400 {
				t.Fatalf("expected 400, got %d", rr.Code)
			}

			var resp messageResp
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != missingFieldsMessage {
				t.Errorf("message = %q, want %q", resp.Message, missingFieldsMessage)
			}

			// Even on the failure path the materialized temp file must be gone.
			entries, err := os.ReadDir(tempDir)
			if err != nil {
				t.Fatalf("read temp dir: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("expected empty temp dir after rejected create, found %d entries", len(entries))
			}
		})
	}
}

func TestCreateUser_BadBody(t *testing.T) {
	tempDir := t.TempDir()
	cfg := Config{TempDir: tempDir}
	handler := cfg.createUserHandler(NewTempUploadStore(tempDir))

	req := httptest.NewRequest("POST", "/api/users/add", nil)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 for non-multipart body, got %d", rr.Code)
	}
}
