package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/memlane/core"
)

// Key prefixes for different data types
const (
	itemRecordPrefix   = "item"
	itemTimelinePrefix = "itemu"
	itemTagPrefix      = "itemt"
	itemIDSeq          = "itemseq"
)

// makeItemKey generates a key for an item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemRecordPrefix, id))
}

// itemKeyPrefix is the iteration prefix covering every primary item key and nothing else.
func itemKeyPrefix() []byte {
	return []byte(itemRecordPrefix + ":")
}

// makeTimelineKey generates a composite key for the per-user timeline index.
// Format: prefix:userID:createdAt:itemID
func makeTimelineKey(userID core.ID, createdAt time.Time, itemID core.ID) []byte {
	buf := makeUserPrefix(itemTimelinePrefix, userID, 16)
	offset := len(buf) - 16
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	return buf
}

// makePartialTimelineKey generates the prefix of every timeline key for a user.
// Format: prefix:userID
func makePartialTimelineKey(userID core.ID) []byte {
	return makeUserPrefix(itemTimelinePrefix, userID, 0)
}

// makeTagKey generates a composite key for the per-user tag index.
// Format: prefix:userID:tagID:itemID
func makeTagKey(userID core.ID, tag string, itemID core.ID) []byte {
	buf := makeUserPrefix(itemTagPrefix, userID, 16)
	offset := len(buf) - 16
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(tag)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	return buf
}

// makePartialTagKey generates the prefix of every tag key for a user.
// Format: prefix:userID
func makePartialTagKey(userID core.ID) []byte {
	return makeUserPrefix(itemTagPrefix, userID, 0)
}

// makeUserPrefix writes prefix:userID followed by extra zeroed bytes.
func makeUserPrefix(prefix string, userID core.ID, extra int) []byte {
	prefixBytes := []byte(prefix + ":")
	buf := make([]byte, len(prefixBytes)+8+extra)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(userID))
	return buf
}

// seekLast returns a key sorting after every key that starts with prefix.
// Used to position reverse iterators.
func seekLast(prefix []byte) []byte {
	return append(bytes.Clone(prefix), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
}
