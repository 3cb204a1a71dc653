// services/archive_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"wager-settlement-system/models"
	"wager-settlement-system/utils"

	"github.com/gosimple/slug"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// ArchiveService exports the daily ledger journal to the R2 archive bucket so
// settlement history survives DB retention windows.
type ArchiveService struct {
	DB    *gorm.DB
	Label string // deployment label used in object keys
}

func NewArchiveService(db *gorm.DB) *ArchiveService {
	label := os.Getenv("ARCHIVE_LABEL")
	if label == "" {
		label = "wager-settlement"
	}
	return &ArchiveService{DB: db, Label: slug.Make(label)}
}

// ExportJournal uploads all journal rows for one UTC day as a single JSON
// object keyed by deployment label and date.
func (s *ArchiveService) ExportJournal(day time.Time) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var rows []models.LedgerTransfer
	if err := s.DB.
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load journal for %s: %w", start.Format("2006-01-02"), err)
	}
	if len(rows) == 0 {
		log.Printf("[Archive] no journal rows for %s, skipping", start.Format("2006-01-02"))
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"day":       start.Format("2006-01-02"),
		"transfers": rows,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	key := fmt.Sprintf("journal/%s/%s.json", s.Label, start.Format("2006-01-02"))
	if err := utils.UploadJSON(key, body); err != nil {
		return err
	}

	var total uint64
	for _, r := range rows {
		total += r.Amount
	}
	p := message.NewPrinter(language.English)
	log.Printf("✅ Archived %d transfer(s) (%s base units) to %s", len(rows), p.Sprintf("%d", total), key)
	return nil
}
