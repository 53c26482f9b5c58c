package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by kind so unrelated values cannot collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ContentUUID identifies a published entry across rebuilds. Feed GUIDs use it
// so readers do not see reposts when the site is regenerated.
func ContentUUID(category, slug string) uuid.UUID {
	return UUID("devblog:content:" + strings.ToLower(strings.TrimSpace(category)) + ":" + strings.TrimSpace(slug))
}

// RevisionTag returns a quoted HTTP entity tag for the given parts. Parts are
// joined with a separator that cannot appear in slugs or timestamps.
func RevisionTag(parts ...string) string {
	id := UUID("devblog:revision:" + strings.Join(parts, "\x1f"))
	return `"` + id.String() + `"`
}
