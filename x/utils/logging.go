package utils

import (
	"time"

	"github.com/iov-one/gasless"
)

// Logging is a decorator to log transactions as they pass through.
type Logging struct{}

var _ gasless.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs failures as info and successes as debug.
func (Logging) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs failures as errors and successes as info.
func (Logging) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx gasless.Context, tx gasless.Tx, start time.Time, msg string, err error, check bool) {
	logger := gasless.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if m, merr := tx.GetMsg(); merr == nil && m != nil {
		logger = logger.With("path", m.Path())
	}

	// An empty message is still logged for the other fields.
	switch {
	case err != nil && check:
		logger.Info(msg, "err", err)
	case err != nil:
		logger.Error(msg, "err", err)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
