package gap

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/content-gap/internal/model"
)

var (
	// ErrNoDataForPrimaryDomain is returned when the primary domain yields no
	// keywords. Nothing can be compared without a baseline, so no partial
	// result is produced.
	ErrNoDataForPrimaryDomain = eris.New("no data for primary domain")

	// ErrInvalidTarget is returned when the primary domain is blank.
	ErrInvalidTarget = eris.New("invalid analysis target")
)

// skipReason classifies a failed or empty competitor fetch.
func skipReason(fetchCtx context.Context, err error) model.SkipReason {
	if err == nil {
		return model.SkipReasonNoData
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || fetchCtx.Err() != nil {
		return model.SkipReasonTimeout
	}
	return model.SkipReasonFetchFailed
}
