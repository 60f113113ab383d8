package delivery

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/heraldhq/herald-api/internal/model"
)

// computeVersion derives the cache-validation token for a resolved config:
// a stable digest over the (id, updatedAt) pairs of the returned eligible
// set. It changes iff the set or any member's content changes. Not
// cryptographically meaningful.
func computeVersion(announcements []*model.Announcement, themes []*model.Theme) string {
	pairs := make([]string, 0, len(announcements)+len(themes))
	for _, a := range announcements {
		pairs = append(pairs, "a:"+a.ID.String()+":"+strconv.FormatInt(a.UpdatedAt.UnixNano(), 10))
	}
	for _, t := range themes {
		pairs = append(pairs, "t:"+t.ID.String()+":"+strconv.FormatInt(t.UpdatedAt.UnixNano(), 10))
	}
	sort.Strings(pairs)

	sum := sha256.Sum256([]byte(strings.Join(pairs, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
