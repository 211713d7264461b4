package index

import (
	"fmt"
	"time"

	"github.com/poiesic/nutridex/core"
)

const (
	// currentIndexVersion is bumped on every snapshot schema change. A
	// cached record from any other version is discarded and rebuilt.
	currentIndexVersion = 3

	// cacheSlotKey is the single cache slot the store persists under.
	cacheSlotKey = "main"
)

// encodeCacheRecord serializes a snapshot into a versioned, checksummed
// cache record.
func encodeCacheRecord(snapshot *core.IndexSnapshot) (*core.CacheRecord, error) {
	payload := make([]byte, core.IndexSnapshotMUS.Size(*snapshot))
	core.IndexSnapshotMUS.Marshal(*snapshot, payload)

	return &core.CacheRecord{
		Key:       cacheSlotKey,
		Payload:   payload,
		Checksum:  core.SignatureFromBytes(payload),
		ItemCount: int32(len(snapshot.Items)),
		Version:   currentIndexVersion,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// decodeCacheRecord verifies and deserializes a cache record.
// Version and checksum failures come back as sentinel errors so callers can
// distinguish "rebuild needed" from I/O problems; in practice every decode
// failure resolves the same way, with a rebuild.
func decodeCacheRecord(record *core.CacheRecord) (*core.IndexSnapshot, error) {
	if record.Version != currentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotVersion, record.Version, currentIndexVersion)
	}
	if core.SignatureFromBytes(record.Payload) != record.Checksum {
		return nil, ErrSnapshotChecksum
	}

	snapshot, _, err := core.IndexSnapshotMUS.Unmarshal(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	return &snapshot, nil
}
