package services

import (
	"time"

	"github.com/techagentng/relayhub/db"
	errs "github.com/techagentng/relayhub/errors"
)

const retryBackoff = 100 * time.Millisecond

// withRetry runs op and retries it once after a short backoff when the
// failure looks transient. Not-found and taxonomy errors are final and
// returned as-is.
func withRetry(op func() error) error {
	err := op()
	if err == nil || !isTransient(err) {
		return err
	}
	time.Sleep(retryBackoff)
	return op()
}

func isTransient(err error) bool {
	if errs.Is(err, db.ErrRecordNotFound) {
		return false
	}
	var e *errs.Error
	return !errs.As(err, &e)
}
