package services

import (
	"context"
	"time"

	"legalaware/backend/gamification"
	"legalaware/backend/models"

	"gorm.io/gorm"
)

// PruneActivity deletes activity buckets and read sets of days before
// before's calendar day. Completed challenges are kept.
func (s *ProgressService) PruneActivity(ctx context.Context, before time.Time) (int64, error) {
	cutoff := gamification.DayKey(before.In(s.loc))

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("day < ?", cutoff).Delete(&models.DailyActivity{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected

		res = tx.Where("day < ?", cutoff).Delete(&models.DailyArticleRead{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected
		return nil
	})
	return removed, err
}

// RunJanitor prunes activity older than the retention window now and then
// every interval until ctx is done. Each pass also rebuilds the leaderboard
// board if a write to it was lost.
func (s *ProgressService) RunJanitor(ctx context.Context, every time.Duration) {
	if s.retention <= 0 && s.board == nil {
		return
	}

	sweep := func() {
		if s.BoardStale() {
			s.resyncBoard(ctx)
		}
		if s.retention <= 0 {
			return
		}
		before := s.clock().AddDate(0, 0, -s.retention)
		n, err := s.PruneActivity(ctx, before)
		if err != nil {
			s.log.Error("activity prune failed", "error", err)
			return
		}
		if n > 0 {
			s.log.Info("activity pruned", "rows", n, "before", gamification.DayKey(before))
		}
	}

	sweep()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
