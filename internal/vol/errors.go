package vol

import (
	"fmt"
	"time"
)

// InvalidMethodError reports an unrecognized volatility estimator name.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("'%s' is not recognized as a valid method, use 'close', 'parkinson' or 'gk'", e.Method)
}

// InsufficientDataError reports a computation that was given fewer data
// points than it needs.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason
}

// DataFetchError wraps a failure of the underlying market data source while
// assembling a surface. The first failing expiration aborts the whole
// computation.
type DataFetchError struct {
	Expiration time.Time
	Err        error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch option chain for %s: %v", e.Expiration.Format("2006-01-02"), e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}
