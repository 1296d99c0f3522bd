// Package id generates identifiers for sessions and stored assets.
package id

import (
	"crypto/md5"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var base32Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Length is the length of identifiers produced by NewID.
const Length = 26

// NewID returns a random 26-character lowercase base32 identifier.
// The underlying bytes are a UUIDv4, so the usual collision guarantees apply.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(base32Encoding.EncodeToString(value[:])), nil
}

// ShortCodeLength is the length of join codes and ROM content ids.
const ShortCodeLength = 5

// NewShortCode derives a 5-character hex join code from a seed string and the
// current time. Codes are best-effort unique, not globally unique.
func NewShortCode(seed string, now time.Time) string {
	sum := md5.Sum([]byte(seed + strconv.FormatInt(now.Unix(), 10)))
	return hex.EncodeToString(sum[:])[:ShortCodeLength]
}

// ContentCode derives a stable 5-character hex id from raw content bytes.
// It names uploaded ROMs so re-uploads of the same file map to one id.
func ContentCode(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])[:ShortCodeLength]
}
