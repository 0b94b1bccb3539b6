package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep digests of different kinds from colliding.
const (
	DomainSnapshot = "trainaudit/snapshot/v1"
	DomainTimeline = "trainaudit/timeline/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDigest returns the content digest of one raw weekly snapshot.
func SnapshotDigest(raw []byte) (string, error) {
	v, err := Decode(raw)
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}
	return hashWithDomain(DomainSnapshot, data), nil
}

// TimelineDigest hashes the ordered list of week digests. Reordering weeks
// changes the result.
func TimelineDigest(weekDigests []string) (string, error) {
	data, err := Marshal(weekDigests)
	if err != nil {
		return "", fmt.Errorf("timeline digest: %w", err)
	}
	return hashWithDomain(DomainTimeline, data), nil
}
