package database

import (
	mathrand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewFileID returns prefix_<unix millis>_<suffix>. The suffix is the entropy half of a
// monotonic ULID, so ids minted in the same millisecond still sort in creation order.
func NewFileID(prefix string) string {
	entropyMu.Lock()
	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()

	// the first 10 characters encode the timestamp, which is already in the id
	suffix := strings.ToLower(id.String()[10:])
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
