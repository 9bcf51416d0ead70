package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrNotAnImage is returned by image-filtered stores for parts whose
// Content-Type is not image/*.
var ErrNotAnImage = errors.New("only image files are allowed")

// maxFormValueBytes caps non-file form fields so a text part cannot balloon memory.
const maxFormValueBytes = 1 << 20 // 1MB

// SavedFile describes one multipart file materialized to disk.
type SavedFile struct {
	Path         string
	OriginalName string
	ContentType  string
}

// FieldSpec limits how many files a named multipart field may carry.
type FieldSpec struct {
	Name     string
	MaxCount int
}

// UploadStore materializes multipart file parts to a directory and hands the
// caller descriptors for them. It never deletes what it wrote: removal is the
// handler's obligation on every exit path, success or failure.
//
// Two configurations exist. The image store accepts only the declared
// profileImage/profileBackground fields, one file each, and rejects non-image
// content types. The temp store accepts any field into a scratch directory
// under generated unique names, no filtering.
type UploadStore struct {
	dir       string
	fields    []FieldSpec // nil means any field is accepted
	imageOnly bool
	tempNames bool
}

// NewImageUploadStore returns the persistent-storage configuration: fields
// profileImage and profileBackground, at most one file each, images only.
func NewImageUploadStore(dir string) *UploadStore {
	return &UploadStore{
		dir: dir,
		fields: []FieldSpec{
			{Name: "profileImage", MaxCount: 1},
			{Name: "profileBackground", MaxCount: 1},
		},
		imageOnly: true,
	}
}

// NewTempUploadStore returns the scratch configuration used by the create-user
// route: any fields, generated unique filenames, no MIME filter.
func NewTempUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir, tempNames: true}
}

// Parse walks the multipart body of r, writing file parts into the store's
// directory and collecting plain value parts. Files saved before an error are
// still returned so the caller's deferred cleanup sees them.
func (s *UploadStore) Parse(r *http.Request) (map[string][]SavedFile, url.Values, error) {
	files := make(map[string][]SavedFile)
	values := make(url.Values)

	mr, err := r.MultipartReader()
	if err != nil {
		return files, values, fmt.Errorf("read multipart body: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return files, values, fmt.Errorf("read multipart part: %w", err)
		}

		name := part.FormName()
		if part.FileName() == "" {
			// Plain form value.
			b, err := io.ReadAll(io.LimitReader(part, maxFormValueBytes))
			_ = part.Close()
			if err != nil {
				return files, values, fmt.Errorf("read form value %q: %w", name, err)
			}
			values.Add(name, string(b))
			continue
		}

		if err := s.admit(name, files); err != nil {
			_ = part.Close()
			return files, values, err
		}

		contentType := part.Header.Get("Content-Type")
		if s.imageOnly && !isImageContentType(contentType) {
			_ = part.Close()
			return files, values, ErrNotAnImage
		}

		saved, err := s.save(part, part.FileName())
		_ = part.Close()
		if err != nil {
			return files, values, err
		}
		saved.ContentType = contentType
		files[name] = append(files[name], saved)
	}

	return files, values, nil
}

// admit enforces the declared field list and per-field file counts.
func (s *UploadStore) admit(field string, files map[string][]SavedFile) error {
	if s.fields == nil {
		return nil
	}
	for _, f := range s.fields {
		if f.Name != field {
			continue
		}
		if len(files[field]) >= f.MaxCount {
			return fmt.Errorf("field %q: too many files", field)
		}
		return nil
	}
	return fmt.Errorf("unexpected file field %q", field)
}

// save streams one part to disk under a name unique to this request.
func (s *UploadStore) save(src io.Reader, originalName string) (SavedFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return SavedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	base := filepath.Base(originalName)
	var name string
	if s.tempNames {
		// Scratch files get opaque names; concurrent requests never collide.
		name = uuid.NewString()
	} else {
		name = fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
	}
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return SavedFile{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return SavedFile{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return SavedFile{}, fmt.Errorf("close upload file: %w", err)
	}

	return SavedFile{Path: path, OriginalName: base}, nil
}

// removeFiles deletes every materialized file. Safe on partial maps; missing
// files are ignored so cleanup can run on any exit path.
func removeFiles(files map[string][]SavedFile) {
	for _, fs := range files {
		for _, f := range fs {
			if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
				log.Printf("service=uploads msg=%q path=%s err=%v", "temp file remove failed", f.Path, err)
			}
		}
	}
}
