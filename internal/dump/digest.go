package dump

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for digests. The version suffix allows the scheme to
// change without colliding with old values.
const (
	DomainObject   = "bamboo/object/v1"
	DomainFileData = "bamboo/filedata/v1"
	DomainSummary  = "bamboo/summary/v1"
)

// Digest computes SHA256(domain || 0x00 || data) as lowercase hex.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
