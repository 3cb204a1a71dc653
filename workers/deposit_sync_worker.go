// workers/deposit_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"wager-settlement-system/models"
	"wager-settlement-system/services"
	"wager-settlement-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepositSyncClient pulls confirmed deposits from the upstream custody
// gateway and credits them into the local ledger. The gateway is the only
// source of external funds; everything after the credit is internal
// transfers.
type DepositSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	Ledger     *services.LedgerService
}

func NewDepositSyncClient(db *gorm.DB, ledger *services.LedgerService) *DepositSyncClient {
	baseURL := os.Getenv("CUSTODY_GATEWAY_URL")
	if baseURL == "" {
		log.Fatal("CUSTODY_GATEWAY_URL environment variable is required")
	}
	token := os.Getenv("SETTLEMENT_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SETTLEMENT_SERVICE_TOKEN environment variable is required for deposit sync")
	}

	return &DepositSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		Ledger:     ledger,
		HTTPClient: utils.HTTPClient,
	}
}

type upstreamDeposit struct {
	ExternalTxID string    `json:"external_tx_id"`
	OwnerID      string    `json:"owner_id"`
	Currency     string    `json:"currency"`
	Amount       uint64    `json:"amount"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// GetConfirmedDeposits fetches deposits confirmed since the given time.
func (c *DepositSyncClient) GetConfirmedDeposits(ctx context.Context, since time.Time) ([]upstreamDeposit, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/custody/deposits", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call custody gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("custody gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Deposits []upstreamDeposit `json:"deposits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode custody gateway response: %w", err)
	}
	return response.Deposits, nil
}

// CreditDeposit books one deposit idempotently: the unique external_tx_id
// makes a replayed poll window a no-op, and the event row plus the balance
// credit commit together.
func (c *DepositSyncClient) CreditDeposit(d upstreamDeposit) (bool, error) {
	credited := false
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		event := models.DepositEvent{
			ID:           uuid.NewString(),
			ExternalTxID: d.ExternalTxID,
			OwnerID:      d.OwnerID,
			Currency:     d.Currency,
			Amount:       d.Amount,
			ConfirmedAt:  d.ConfirmedAt,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_tx_id"}},
			DoNothing: true,
		}).Create(&event)
		if res.Error != nil {
			return fmt.Errorf("failed to record deposit event: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Already credited in an earlier window.
			return nil
		}

		addr := models.WalletAddress(d.OwnerID, d.Currency)
		if _, err := c.Ledger.GetOrCreateAccount(tx, addr, d.OwnerID, d.Currency, false); err != nil {
			return err
		}
		if err := c.Ledger.Credit(tx, addr, d.Amount, "deposit:"+d.ExternalTxID); err != nil {
			return err
		}
		credited = true
		return nil
	})
	return credited, err
}

// PollDeposits runs the sync loop until the context is cancelled. The window
// only advances after a fully successful batch, so a failed tick retries the
// same window and idempotent crediting absorbs the overlap.
func PollDeposits(ctx context.Context, client *DepositSyncClient, pollInterval time.Duration) {
	log.Println("Starting deposit polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Deposit polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()

			deposits, err := client.GetConfirmedDeposits(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling deposits: %v", err)
				continue
			}
			if len(deposits) == 0 {
				continue
			}

			var credited int
			failed := false
			for _, d := range deposits {
				ok, err := client.CreditDeposit(d)
				if err != nil {
					log.Printf("❌ Failed to credit deposit %s: %v", d.ExternalTxID, err)
					failed = true
					break
				}
				if ok {
					credited++
				}
			}
			if failed {
				// Retry the same window next tick.
				continue
			}

			lastSyncTime = tickTime
			log.Printf("✅ Credited %d new deposit(s) out of %d reported.", credited, len(deposits))
		}
	}
}
