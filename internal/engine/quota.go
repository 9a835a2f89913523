package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
)

// DefaultMaxVisits is the default maximum number of backend reads one
// root's pipeline may make.
const DefaultMaxVisits = 10000

// visitQuota counts backend reads for one root and enforces a limit.
//
// Each Items root has its own quota. The visit set already guarantees a
// traversal terminates; the quota bounds how much work a wide graph can
// cost (follow any[0:16] over a hub node, for example).
type visitQuota struct {
	root  ir.NodeID
	limit int
	used  int
}

func newVisitQuota(root ir.NodeID, limit int) *visitQuota {
	return &visitQuota{root: root, limit: limit}
}

// Check counts one read and fails once the limit is exceeded. A limit of
// zero or less disables the quota.
func (q *visitQuota) Check() error {
	q.used++
	if q.limit > 0 && q.used > q.limit {
		return &VisitsExceededError{
			Root:   q.root,
			Visits: q.used,
			Limit:  q.limit,
		}
	}
	return nil
}

// Used returns the number of reads counted so far.
func (q *visitQuota) Used() int {
	return q.used
}

// VisitsExceededError is returned when a pipeline reads more nodes than
// its quota allows. It fails only the affected root.
type VisitsExceededError struct {
	Root   ir.NodeID // The requested root
	Visits int       // Reads attempted
	Limit  int       // Maximum allowed reads
}

// Error implements the error interface.
func (e *VisitsExceededError) Error() string {
	return fmt.Sprintf("pipeline for %s exceeded visit quota: %d reads > %d limit",
		e.Root, e.Visits, e.Limit)
}

// IsVisitsExceededError returns true if the error is a VisitsExceededError.
// Uses errors.As to handle wrapped errors.
func IsVisitsExceededError(err error) bool {
	var ve *VisitsExceededError
	return errors.As(err, &ve)
}
