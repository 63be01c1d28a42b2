package partition

import "github.com/zeebo/xxh3"

// Count is the fixed number of shards a grid or ship registry is split into.
// Must stay a power of two so For can mask instead of mod.
const Count = 64

// For returns the shard index for a cell id or ship key.
// Stable and deterministic: the same key always maps to the same shard.
func For(key string) int {
	return int(xxh3.HashString(key) & (Count - 1))
}
