package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a prefixed, lexicographically sortable id, e.g. "ntf_01J...".
// Used for notification and email-log rows where sort-by-id equals
// sort-by-time.
func New(prefix string) string {
	u := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + u.String()
}
