// Package rewards keeps the reward point total earned from first-watch events.
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"cinelog/internal/kvstore"
	"cinelog/internal/logging"
	"cinelog/internal/services"
)

// PointsKey holds the point total as a JSON integer.
const PointsKey = "reward_points_v1"

// PointsPerFirstWatch is awarded each time a movie first becomes WATCHED.
const PointsPerFirstWatch = 50

// Ledger is the persisted point total.
type Ledger struct {
	kv     kvstore.Store
	logger *slog.Logger
}

// NewLedger wraps kv.
func NewLedger(kv kvstore.Store, logger *slog.Logger) *Ledger {
	return &Ledger{kv: kv, logger: logging.NewComponentLogger(logger, "rewards")}
}

// Total returns the current total. Absent or malformed values read as 0.
func (l *Ledger) Total(ctx context.Context) (int, error) {
	data, found, err := l.kv.Get(ctx, PointsKey)
	if err != nil {
		return 0, fmt.Errorf("read reward total: %w", err)
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return 0, nil
	}
	value, ok := decodeTotal(data)
	if !ok {
		logging.WarnWithContext(logging.WithContext(ctx, l.logger), "reward total malformed", "reward_decode_failed",
			logging.String("raw", string(data)),
			logging.String(logging.FieldErrorHint, "inspect or reset the reward_points_v1 value"),
			logging.String(logging.FieldImpact, "reward total restarts from 0"))
		return 0, nil
	}
	return value, nil
}

// decodeTotal accepts a non-negative JSON number. Integers are read exactly;
// fractional values are truncated.
func decodeTotal(data []byte) (int, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return 0, false
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := num.Int64(); err == nil {
		return int(i), i >= 0
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

// Add credits amount and returns the new total.
func (l *Ledger) Add(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, services.Wrap(services.ErrValidation, "rewards", "add", fmt.Sprintf("negative amount %d", amount), nil)
	}
	current, err := l.Total(ctx)
	if err != nil {
		return 0, err
	}
	next := current + amount
	if err := l.kv.Set(ctx, PointsKey, []byte(fmt.Sprintf("%d", next))); err != nil {
		return 0, fmt.Errorf("write reward total: %w", err)
	}
	l.logger.Debug("reward points added",
		logging.Int("amount", amount),
		logging.Int("total", next))
	return next, nil
}

// Reset drops the stored total.
func (l *Ledger) Reset(ctx context.Context) error {
	if err := l.kv.Delete(ctx, PointsKey); err != nil {
		return fmt.Errorf("reset reward total: %w", err)
	}
	return nil
}
