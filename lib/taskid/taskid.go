// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

package taskid

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// counter increments per generated id. Combined with the millisecond
// timestamp and a random suffix, collisions within one process are
// impossible and collisions across processes vanishingly unlikely.
var counter atomic.Uint64

// New returns a task id of the form
// "cue-<unix-millis>-<counter>-<8 hex chars>".
func New() string {
	n := counter.Add(1)
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("cue-%d-%d-%s", time.Now().UnixMilli(), n, suffix)
}
