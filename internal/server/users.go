package server

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
)

// User mirrors one row of the users table. Timestamps are database-set; the
// application never writes them. The password column is stored and returned
// exactly as received, preserved from the source system.
type User struct {
	UserUUID          string    `json:"useruuid"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Password          string    `json:"password"`
	ProfileImage      []byte    `json:"profileimage"`
	ProfileBackground []byte    `json:"profilebackground"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// listUser is a User row plus derived image links: a fetch URL when the blob
// is present, JSON null otherwise.
type listUser struct {
	User
	ProfileImageURL      *string `json:"profileImageUrl"`
	ProfileBackgroundURL *string `json:"profileBackgroundUrl"`
}

type createUserResp struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type messageResp struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

const missingFieldsMessage = "All fields are required: username, email, phone, and password."

// newUserID derives the public 8-character handle from a fresh UUID. The
// truncation can collide; the unique constraint on useruuid is the final
// arbiter and a collision surfaces as a duplicate-entry response.
func newUserID() string {
	return uuid.NewString()[:8]
}

// imageURL returns the fetch URL for one of a user's images, or nil when the
// corresponding blob is absent.
func (cfg Config) imageURL(useruuid, imageType string, present bool) *string {
	if !present {
		return nil
	}
	u := cfg.BaseURL + "/api/users/image/" + useruuid + "/" + imageType
	return &u
}

// listUsersHandler handles GET /api/users/all: the full row set, each row
// augmented with profileImageUrl/profileBackgroundUrl links. No filtering,
// no pagination.
func (cfg Config) listUsersHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows, err := cfg.DB.QueryContext(r.Context(), `
			SELECT useruuid, username, email, phone, password,
			       profileimage, profilebackground, created_at, updated_at
			FROM users
		`)
		if err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "list users query failed", err)
			http.Error(w, "Error fetching users.", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		users := make([]listUser, 0)
		for rows.Next() {
			var u User
			if err := rows.Scan(
				&u.UserUUID, &u.Username, &u.Email, &u.Phone, &u.Password,
				&u.ProfileImage, &u.ProfileBackground, &u.CreatedAt, &u.UpdatedAt,
			); err != nil {
				log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "list users scan failed", err)
				http.Error(w, "Error fetching users.", http.StatusInternalServerError)
				return
			}
			users = append(users, listUser{
				User:                 u,
				ProfileImageURL:      cfg.imageURL(u.UserUUID, "profileimage", u.ProfileImage != nil),
				ProfileBackgroundURL: cfg.imageURL(u.UserUUID, "profilebackground", u.ProfileBackground != nil),
			})
		}
		if err := rows.Err(); err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "list users rows failed", err)
			http.Error(w, "Error fetching users.", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, users)
	})
}

// createUserHandler handles POST /api/users/add. The multipart body lands in
// the scratch store first; whatever was materialized is removed on every exit
// path, so a failed insert leaves no files behind.
func (cfg Config) createUserHandler(uploads *UploadStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		files, form, err := uploads.Parse(r)
		defer removeFiles(files)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResp{Message: "Invalid multipart body.", Error: err.Error()})
			return
		}

		if !hasRequiredUserFields(form) {
			writeJSON(w, http.StatusBadRequest, messageResp{Message: missingFieldsMessage})
			return
		}

		profileImage, err := readUpload(files, "profileimage")
		if err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "read profile image failed", err)
			http.Error(w, "Error creating user.", http.StatusInternalServerError)
			return
		}
		profileBackground, err := readUpload(files, "profilebackground")
		if err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "read profile background failed", err)
			http.Error(w, "Error creating user.", http.StatusInternalServerError)
			return
		}

		if err := cfg.insertUser(w, r, form, profileImage, profileBackground); err != nil {
			log.Printf("rid=%s msg=%q err=%v", RequestIDFromContext(r.Context()), "create user insert failed", err)
			http.Error(w, "Error creating user.", http.StatusInternalServerError)
		}
	})
}

// readUpload loads the first file stored for field fully into memory, or nil
// when the field carried no file.
func readUpload(files map[string][]SavedFile, field string) ([]byte, error) {
	fs := files[field]
	if len(fs) == 0 {
		return nil, nil
	}
	return os.ReadFile(fs[0].Path)
}

// insertUser performs the single-statement insert and writes the HTTP
// response for every outcome except unexpected failures, which it returns.
func (cfg Config) insertUser(w http.ResponseWriter, r *http.Request, form url.Values, profileImage, profileBackground []byte) error {
	u := User{
		UserUUID: newUserID(),
		Username: form.Get("username"),
		Email:    form.Get("email"),
		Phone:    form.Get("phone"),
		Password: form.Get("password"),
	}

	err := cfg.DB.QueryRowContext(r.Context(), `
		INSERT INTO users (useruuid, username, email, phone, password, profileimage, profilebackground)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING useruuid, username, email, phone, password,
		          profileimage, profilebackground, created_at, updated_at
	`, u.UserUUID, u.Username, u.Email, u.Phone, u.Password, profileImage, profileBackground).Scan(
		&u.UserUUID, &u.Username, &u.Email, &u.Phone, &u.Password,
		&u.ProfileImage, &u.ProfileBackground, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, messageResp{Message: "Duplicate entry detected.", Error: err.Error()})
			return nil
		}
		return err
	}

	writeJSON(w, http.StatusCreated, createUserResp{Message: "User created successfully!", User: u})
	return nil
}
