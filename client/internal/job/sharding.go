package job

import (
	"hash/fnv"
	"strconv"
)

// ShardLabel hashes a read id to a stable small cardinality metrics label
// (0-31), so per-read series never explode.
func ShardLabel(readID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(readID))
	return strconv.FormatUint(uint64(h.Sum32()%32), 10)
}
