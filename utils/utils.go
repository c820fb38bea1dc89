package utils

import (
	"crypto/md5"
	"strings"

	"github.com/gofrs/uuid"
)

// NewDeterministicID derives a stable UUID from the given parts. The same
// parts in the same order always map to the same id, which keeps journal
// writes idempotent across replays.
func NewDeterministicID(parts ...string) uuid.UUID {
	h := md5.New()
	h.Write([]byte(strings.Join(parts, "|")))
	sum := h.Sum(nil)

	// Stamp version 3 and the RFC 4122 variant so the result is a valid UUID.
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum)
}
