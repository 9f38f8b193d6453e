package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hemolens/backend/internal/common"
	"github.com/hemolens/backend/pkg/errorx"
	"github.com/hemolens/backend/pkg/router"
	"github.com/hemolens/backend/pkg/xcontext"
)

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)

		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		path := xcontext.HTTPRequest(ctx).URL.Path

		for key, counter := range common.PromCounters {
			switch key {
			case common.HTTPRequestTotal:
				counter.WithLabelValues(path, fmt.Sprint(code)).Inc()
			}
		}

		for key, histogram := range common.PromHistograms {
			switch key {
			case common.HTTPRequestDurationSeconds:
				histogram.WithLabelValues(path, fmt.Sprint(code)).
					Observe(time.Since(startTime).Seconds())
			}
		}
	}
}
