package media

import (
	"context"
	"time"

	"storefront/backend/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper deletes uploaded objects that stayed unreferenced for longer than ttl.
type Sweeper struct {
	store  Store
	ledger Ledger
	ttl    time.Duration
	now    func() time.Time
	cron   *cron.Cron
}

func NewSweeper(store Store, ledger Ledger, ttl time.Duration) *Sweeper {
	return &Sweeper{store: store, ledger: ledger, ttl: ttl, now: time.Now}
}

// Sweep runs one pass and returns the number of objects removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	keys, err := s.ledger.Expired(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}

	removed := 0
	var done []string
	for _, key := range keys {
		log := logrus.WithField("key", key)
		ok, err := s.store.Exists(ctx, key)
		if err != nil {
			log.WithError(err).Warn("orphan sweep: exists check failed")
			continue
		}
		if ok {
			if err := s.store.Delete(ctx, key); err != nil {
				log.WithError(err).Warn("orphan sweep: delete failed")
				continue
			}
			removed++
		}
		done = append(done, key)
	}

	if err := s.ledger.Release(ctx, done...); err != nil {
		return removed, err
	}
	metrics.RecordOrphansSwept(removed)
	if removed > 0 {
		logrus.WithField("removed", removed).Info("orphaned media swept")
	}
	return removed, nil
}

// Start schedules Sweep on a cron schedule such as "@every 1h".
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			logrus.WithError(err).Error("orphan sweep failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
