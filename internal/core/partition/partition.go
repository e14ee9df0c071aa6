package partition

import "hash/fnv"

// Count is the fixed number of lock stripes.
// Never changes after deployment: stripe indexes are computed, not stored.
const Count = 256

// For returns the stripe ID for a given key.
// Stable and deterministic: the same key always maps to the same stripe.
func For(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % Count)
}

// LockKey maps a key onto the signed 64-bit space used by Postgres advisory locks.
// Collisions only cause unrelated keys to serialize, never a correctness issue.
func LockKey(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}
