package service

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/norsu/hrportal/internal/core/domain"
)

// requireRole re-checks the actor's role inside the service so that no
// operation depends on the transport layer alone.
func requireRole(actor domain.Principal, roles ...domain.Role) error {
	if actor.ID == "" {
		return domain.ErrUnauthenticated
	}
	if !domain.Guard(roles, actor.Role).Allowed {
		return domain.ErrForbidden
	}
	return nil
}

// textPolicy strips all markup from free text.
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText removes HTML from s and returns plain text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(strings.TrimSpace(s))))
}

// objectPath builds {bucket}/{prefix}/{uuid}_{unix}.{ext}.
func objectPath(bucket, prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s_%d.%s", bucket, prefix, uuid.NewString(), now.Unix(), strings.TrimPrefix(ext, "."))
}

// slug lower-cases s and collapses every run of non alphanumerics into "_".
func slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
