package cache

import "time"

// BytesCache stores opaque byte payloads with a TTL. Implementations must
// treat a miss as (nil, false, nil), reserving the error for backend faults.
type BytesCache interface {
	GetBytes(key string) ([]byte, bool, error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
