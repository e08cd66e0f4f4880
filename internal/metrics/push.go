package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the run metrics to the Pushgateway at url under job, replacing the
// previous push of the same job. A failed run omits the last-success gauge, so the
// gateway drops it.
func (r *Run) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.Gatherer()).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
