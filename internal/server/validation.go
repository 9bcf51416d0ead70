// validation.go - Input checks shared by the upload store and user handlers
package server

import (
	"net/url"
	"strings"
)

// requiredUserFields are the form fields every create-user request must carry.
var requiredUserFields = []string{"username", "email", "phone", "password"}

// hasRequiredUserFields reports whether all required create-user fields are
// present and non-empty. Values are taken as received; the service does no
// normalization of caller input.
func hasRequiredUserFields(form url.Values) bool {
	for _, f := range requiredUserFields {
		if form.Get(f) == "" {
			return false
		}
	}
	return true
}

// isImageContentType reports whether a multipart Content-Type declares an
// image. The declared type is trusted; bytes are not sniffed.
func isImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
