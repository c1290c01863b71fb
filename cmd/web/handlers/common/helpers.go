package common

import (
	"mime"
	"strings"
)

// FormBool reads the loose truthy values HTML forms and JSON clients send.
func FormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// AttachmentDisposition builds a Content-Disposition header that names the
// download. Non-ASCII names are carried in filename* per RFC 6266.
func AttachmentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
