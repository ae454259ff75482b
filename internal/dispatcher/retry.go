package dispatcher

import (
	"math/rand"
	"time"

	"github.com/cronbackhq/cronback/internal/models"
)

// Delay is one step of a retry plan: how long to wait before
// performing the attempt it describes.
type Delay struct {
	Duration   time.Duration
	AttemptNum uint32
	Remaining  uint32

	limit uint32
}

func (d Delay) FirstAttempt() bool    { return d.AttemptNum == 1 }
func (d Delay) LastAttempt() bool     { return d.Remaining == 0 }
func (d Delay) AttemptsLimit() uint32 { return d.limit }

// RetryPlan walks the attempt sequence for one run. A nil retry config
// plans exactly one attempt. The first attempt never waits; later
// attempts wait per the policy plus up to a second of jitter so
// simultaneous failures do not retry in lockstep.
type RetryPlan struct {
	config  *models.RetryConfig
	limit   uint32
	attempt uint32
}

// NewRetryPlan builds the plan for the given config (nil = no retry).
func NewRetryPlan(config *models.RetryConfig) *RetryPlan {
	limit := uint32(1)
	if config != nil {
		limit = config.MaxNumAttempts
	}
	return &RetryPlan{config: config, limit: limit}
}

// Next yields the delay preceding the next attempt, or false when the
// plan is exhausted.
func (p *RetryPlan) Next() (Delay, bool) {
	if p.attempt >= p.limit {
		return Delay{}, false
	}
	p.attempt++

	var wait time.Duration
	if p.attempt > 1 {
		switch p.config.Type {
		case models.RetryTypeSimple:
			wait = p.config.Delay()
		case models.RetryTypeExponentialBackoff:
			wait = exponentialDelay(p.config, p.attempt)
		}
		wait += time.Duration(rand.Intn(1000)) * time.Millisecond
	}

	return Delay{
		Duration:   wait,
		AttemptNum: p.attempt,
		Remaining:  p.limit - p.attempt,
		limit:      p.limit,
	}, true
}

// exponentialDelay doubles the base delay per attempt past the second,
// clamped at the configured ceiling. Attempt 2 waits the base delay.
func exponentialDelay(config *models.RetryConfig, attempt uint32) time.Duration {
	delay := config.Delay()
	maxDelay := config.MaxDelay()
	if delay >= maxDelay {
		return maxDelay
	}
	for i := uint32(2); i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}
