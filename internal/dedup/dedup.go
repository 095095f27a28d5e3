// Package dedup is a best-effort guard against the platform redelivering an
// event whose acknowledgment was lost. It does not promise exactly-once
// across restarts or instances.
package dedup

import (
	"context"
	"time"
)

// TTL bounds how long a processed key suppresses reprocessing. The sweep
// interval of the in-memory store equals the TTL.
const TTL = 5 * time.Minute

// Store tracks processed event keys for the TTL window. An empty key means
// no stable identity could be derived; such events are always processed.
// Implementations must tolerate concurrent use from in-flight requests.
type Store interface {
	ShouldProcess(ctx context.Context, key string) bool
	MarkProcessed(ctx context.Context, key string)
}
