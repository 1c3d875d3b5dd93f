package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type Store interface {
	ListEarned(ctx context.Context, userID string) ([]EarnedAchievement, error)
	Insert(ctx context.Context, userID, badgeName string) (*EarnedAchievement, error)
}

type Evaluator struct {
	store   Store
	catalog []Badge
}

func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{
		store:   store,
		catalog: Catalog(),
	}
}

// Evaluate awards every catalog badge the user qualifies for and does not
// hold yet, returning the newly persisted ones in catalog order.
//
// The earned set is read once per pass. Inserts are independent: a failure
// for one badge is logged and the pass continues. A duplicate insert from a
// concurrent pass is not an error, the badge simply is not reported again.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, stats Stats) ([]Badge, error) {
	earned, err := e.store.ListEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("evaluate achievements: %w", err)
	}
	held := make(map[string]struct{}, len(earned))
	for _, a := range earned {
		held[a.BadgeName] = struct{}{}
	}

	var unlocked []Badge
	for _, badge := range e.catalog {
		if _, ok := held[badge.Name]; ok {
			continue
		}
		if !badge.Check(stats) {
			continue
		}
		if _, err := e.store.Insert(ctx, userID, badge.Name); err != nil {
			if errors.Is(err, ErrAlreadyEarned) {
				logrus.Debugf("badge %q for user %s was awarded concurrently", badge.Name, userID)
			} else {
				logrus.WithField("user_id", userID).Warnf("could not award badge %q: %v", badge.Name, err)
			}
			continue
		}
		unlocked = append(unlocked, badge)
	}

	if len(unlocked) > 0 {
		logrus.WithField("user_id", userID).Infof("unlocked %d achievement(s)", len(unlocked))
	}
	return unlocked, nil
}

// Status lists the whole catalog with the user's earned flags.
func (e *Evaluator) Status(ctx context.Context, userID string) ([]BadgeStatus, error) {
	earned, err := e.store.ListEarned(ctx, userID)
	if err != nil {
		return nil, err
	}
	at := make(map[string]time.Time, len(earned))
	for _, a := range earned {
		at[a.BadgeName] = a.EarnedAt
	}

	out := make([]BadgeStatus, 0, len(e.catalog))
	for _, badge := range e.catalog {
		st := BadgeStatus{Name: badge.Name, Description: badge.Description}
		if t, ok := at[badge.Name]; ok {
			t := t
			st.Earned = true
			st.EarnedAt = &t
		}
		out = append(out, st)
	}
	return out, nil
}
