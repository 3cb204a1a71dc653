// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the background upkeep jobs: the minutely
// subscription lapse sweep and the daily ledger journal archive.
func StartMaintenanceScheduler(subs *SubscriptionService, archive *ArchiveService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			n, err := subs.SweepLapsed(time.Now().Unix())
			if err != nil {
				log.Printf("[Scheduler] subscription sweep failed: %v", err)
				return
			}
			if n > 0 {
				log.Printf("✅ Flagged %d lapsed subscription(s)", n)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			day := time.Now().UTC().AddDate(0, 0, -1)
			if err := archive.ExportJournal(day); err != nil {
				log.Printf("[Scheduler] journal archive failed: %v", err)
			}
		}),
	)
}
