package badges

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cinelog/internal/kvstore"
	"cinelog/internal/logging"
)

// UnlocksKey holds the badge id → unlock record map.
const UnlocksKey = "badges_v1"

const dateLayout = "2006-01-02"

// Unlocked is a badge the user holds.
type Unlocked struct {
	Definition
	UnlockedAt string `json:"unlockedAt"`
}

// Result reports the state after an unlock check.
type Result struct {
	All           []Unlocked `json:"badges"`
	NewlyUnlocked []Unlocked `json:"newlyUnlocked"`
}

type unlockRecord struct {
	UnlockedAt string `json:"unlockedAt"`
}

// Unlocker evaluates thresholds and persists unlocks. Unlocks are never
// removed by a check.
type Unlocker struct {
	kv     kvstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes an Unlocker.
type Option func(*Unlocker)

// WithClock overrides the time source used for unlock dates.
func WithClock(now func() time.Time) Option {
	return func(u *Unlocker) {
		if now != nil {
			u.now = now
		}
	}
}

// NewUnlocker wraps kv.
func NewUnlocker(kv kvstore.Store, logger *slog.Logger, opts ...Option) *Unlocker {
	u := &Unlocker{
		kv:     kv,
		logger: logging.NewComponentLogger(logger, "badges"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Load lists unlocked badges, newest first.
func (u *Unlocker) Load(ctx context.Context) ([]Unlocked, error) {
	unlocks, err := u.read(ctx)
	if err != nil {
		return nil, err
	}
	return listUnlocked(unlocks), nil
}

// CheckAndUnlock unlocks every badge whose threshold watchedCount meets and
// that is not already held. Negative counts are treated as 0.
func (u *Unlocker) CheckAndUnlock(ctx context.Context, watchedCount int) (Result, error) {
	count := max(watchedCount, 0)
	unlocks, err := u.read(ctx)
	if err != nil {
		return Result{}, err
	}

	today := u.now().Local().Format(dateLayout)
	newIDs := make(map[string]struct{})
	for _, def := range definitions {
		if unlockedAt(unlocks, def.ID) != "" {
			continue
		}
		if count >= def.Threshold {
			raw, err := json.Marshal(unlockRecord{UnlockedAt: today})
			if err != nil {
				return Result{}, fmt.Errorf("encode unlock record: %w", err)
			}
			unlocks[def.ID] = raw
			newIDs[def.ID] = struct{}{}
		}
	}

	if len(newIDs) > 0 {
		data, err := json.Marshal(unlocks)
		if err != nil {
			return Result{}, fmt.Errorf("encode unlocks: %w", err)
		}
		if err := u.kv.Set(ctx, UnlocksKey, data); err != nil {
			return Result{}, fmt.Errorf("write unlocks: %w", err)
		}
	}

	all := listUnlocked(unlocks)
	result := Result{All: all, NewlyUnlocked: []Unlocked{}}
	for _, badge := range all {
		if _, ok := newIDs[badge.ID]; ok {
			result.NewlyUnlocked = append(result.NewlyUnlocked, badge)
			u.logger.Info("badge unlocked",
				logging.String("badge_id", badge.ID),
				logging.Int("threshold", badge.Threshold),
				logging.Int("watched_count", count))
		}
	}
	return result, nil
}

// Clear removes every unlock record.
func (u *Unlocker) Clear(ctx context.Context) error {
	if err := u.kv.Delete(ctx, UnlocksKey); err != nil {
		return fmt.Errorf("clear unlocks: %w", err)
	}
	return nil
}

// read returns the raw unlock map. Entries are kept raw so ids this build
// does not know survive a rewrite.
func (u *Unlocker) read(ctx context.Context) (map[string]json.RawMessage, error) {
	data, found, err := u.kv.Get(ctx, UnlocksKey)
	if err != nil {
		return nil, fmt.Errorf("read unlocks: %w", err)
	}
	unlocks := make(map[string]json.RawMessage)
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return unlocks, nil
	}
	if err := json.Unmarshal(data, &unlocks); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, u.logger), "badge unlock map malformed", "badges_decode_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect or reset the badges_v1 value"),
			logging.String(logging.FieldImpact, "badges treated as locked until re-earned"))
		return make(map[string]json.RawMessage), nil
	}
	if unlocks == nil {
		unlocks = make(map[string]json.RawMessage)
	}
	return unlocks, nil
}

func unlockedAt(unlocks map[string]json.RawMessage, id string) string {
	raw, ok := unlocks[id]
	if !ok {
		return ""
	}
	var rec struct {
		UnlockedAt any `json:"unlockedAt"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil || rec.UnlockedAt == nil {
		return ""
	}
	switch v := rec.UnlockedAt.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func listUnlocked(unlocks map[string]json.RawMessage) []Unlocked {
	list := make([]Unlocked, 0, len(unlocks))
	for _, def := range definitions {
		if _, ok := unlocks[def.ID]; !ok {
			continue
		}
		list = append(list, Unlocked{Definition: def, UnlockedAt: unlockedAt(unlocks, def.ID)})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].UnlockedAt != list[j].UnlockedAt {
			return list[i].UnlockedAt > list[j].UnlockedAt
		}
		return list[i].Threshold > list[j].Threshold
	})
	return list
}
