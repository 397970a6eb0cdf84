// pkg/chaos/experiments.go
package chaos

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// RegisterExperiments registers the predefined experiment suite.
func (e *Engine) RegisterExperiments() {
	e.RegisterExperiment(e.ConcurrentTradeAcceptRaceTest())
	e.RegisterExperiment(e.ConcurrentPackPurchaseTest())
	e.RegisterExperiment(e.ConnectionPoolExhaustionExperiment())
}

// ConcurrentTradeAcceptRaceTest validates that a pending trade settles
// at most once no matter how many accept requests race for it. The
// consistency metric counts ledger rows that only a double-settlement
// could produce.
func (e *Engine) ConcurrentTradeAcceptRaceTest() Experiment {
	return Experiment{
		Name:       "concurrent-trade-accept-race",
		Hypothesis: "A pending trade settles at most once under concurrent accept requests",
		SteadyState: []Metric{
			{
				Name: "ledger_consistency",
				Query: func(ctx context.Context) (float64, error) {
					var inconsistencies int
					err := e.db.QueryRowContext(ctx, `
						SELECT COUNT(*) FROM user_collection WHERE quantity < 1
					`).Scan(&inconsistencies)
					return float64(inconsistencies), err
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
			{
				Name: "double_settlements",
				Query: func(ctx context.Context) (float64, error) {
					// A trade stream never carries two terminal events.
					var doubled int
					err := e.db.QueryRowContext(ctx, `
						SELECT COUNT(*) FROM (
							SELECT aggregate_id FROM events
							WHERE aggregate_type = 'trade' AND event_type = 'TradeResolved'
							GROUP BY aggregate_id HAVING COUNT(*) > 1
						) d
					`).Scan(&doubled)
					return float64(doubled), err
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			{
				Type:   "concurrent-requests",
				Target: "trading-service",
				Parameters: map[string]interface{}{
					"concurrency": 50,
				},
				Execute: func(ctx context.Context) error {
					tradeID, receiverID, err := e.pendingTrade(ctx)
					if err != nil {
						return fmt.Errorf("no pending trade to race on: %w", err)
					}

					url := fmt.Sprintf("%s/api/v1/trades/%s/accept", e.gatewayURL, tradeID)
					var wg sync.WaitGroup
					for i := 0; i < 50; i++ {
						wg.Add(1)
						go func() {
							defer wg.Done()
							req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
							if err != nil {
								return
							}
							req.Header.Set("X-Trainer-ID", receiverID)
							resp, err := http.DefaultClient.Do(req)
							if err != nil {
								return
							}
							resp.Body.Close()
						}()
					}
					wg.Wait()
					return nil
				},
			},
		},
		Rollback: []Action{},
		Validation: []Assertion{
			{
				Metric:    "double_settlements",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "No trade may resolve twice",
			},
			{
				Metric:    "ledger_consistency",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "No ledger row may drop below one copy",
			},
		},
		Duration:    30 * time.Second,
		BlastRadius: 0.1,
	}
}

// ConcurrentPackPurchaseTest validates wallet conservation: coins spent
// never exceed coins held, even when one trainer hammers the purchase
// endpoint concurrently.
func (e *Engine) ConcurrentPackPurchaseTest() Experiment {
	return Experiment{
		Name:       "concurrent-pack-purchase",
		Hypothesis: "Wallets never go negative under concurrent pack purchases",
		SteadyState: []Metric{
			{
				Name: "negative_wallets",
				Query: func(ctx context.Context) (float64, error) {
					var negatives int
					err := e.db.QueryRowContext(ctx, `
						SELECT COUNT(*) FROM trainers WHERE coins < 0
					`).Scan(&negatives)
					return float64(negatives), err
				},
				Threshold: Threshold{Operator: "==", Value: 0},
			},
		},
		Method: []Action{
			{
				Type:   "concurrent-requests",
				Target: "collection-service",
				Parameters: map[string]interface{}{
					"concurrency": 30,
					"pack_type":   "standard",
				},
				Execute: func(ctx context.Context) error {
					trainerID, setID, err := e.purchaseTarget(ctx)
					if err != nil {
						return fmt.Errorf("no trainer to purchase as: %w", err)
					}

					url := e.gatewayURL + "/api/v1/packs"
					body := fmt.Sprintf(`{"set_id":%q,"pack_type":"standard"}`, setID)
					var wg sync.WaitGroup
					for i := 0; i < 30; i++ {
						wg.Add(1)
						go func() {
							defer wg.Done()
							req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(body)))
							if err != nil {
								return
							}
							req.Header.Set("Content-Type", "application/json")
							req.Header.Set("X-Trainer-ID", trainerID)
							resp, err := http.DefaultClient.Do(req)
							if err != nil {
								return
							}
							resp.Body.Close()
						}()
					}
					wg.Wait()
					return nil
				},
			},
		},
		Rollback: []Action{},
		Validation: []Assertion{
			{
				Metric:    "negative_wallets",
				Condition: func(v float64) bool { return v == 0 },
				Message:   "No wallet may hold a negative balance",
			},
		},
		Duration:    30 * time.Second,
		BlastRadius: 0.1,
	}
}

// ConnectionPoolExhaustionExperiment holds connections and checks that
// purchases keep succeeding once pressure lifts.
func (e *Engine) ConnectionPoolExhaustionExperiment() Experiment {
	return Experiment{
		Name:       "database-connection-pool-exhaustion",
		Hypothesis: "Services recover once connection pool pressure lifts",
		SteadyState: []Metric{
			{
				Name: "db_reachable",
				Query: func(ctx context.Context) (float64, error) {
					if err := e.db.PingContext(ctx); err != nil {
						return 0.0, nil
					}
					return 1.0, nil
				},
				Threshold: Threshold{Operator: "==", Value: 1.0},
			},
		},
		Method: []Action{
			{
				Type:   "exhaust-connections",
				Target: "postgres-connection-pool",
				Execute: func(ctx context.Context) error {
					conns := make([]*sql.Conn, 0)
					for i := 0; i < 50; i++ {
						conn, err := e.db.Conn(ctx)
						if err != nil {
							break
						}
						conns = append(conns, conn)
					}
					time.Sleep(15 * time.Second)
					for _, conn := range conns {
						conn.Close()
					}
					return nil
				},
			},
		},
		Rollback: []Action{},
		Validation: []Assertion{
			{
				Metric:    "db_reachable",
				Condition: func(v float64) bool { return v == 1.0 },
				Message:   "Database should be reachable after pressure lifts",
			},
		},
		Duration:    45 * time.Second,
		BlastRadius: 1.0,
	}
}

func (e *Engine) pendingTrade(ctx context.Context) (tradeID, receiverID string, err error) {
	err = e.db.QueryRowContext(ctx, `
		SELECT id, receiver_id FROM trades
		WHERE status = 'pending'
		ORDER BY created_at DESC LIMIT 1
	`).Scan(&tradeID, &receiverID)
	return tradeID, receiverID, err
}

func (e *Engine) purchaseTarget(ctx context.Context) (trainerID, setID string, err error) {
	err = e.db.QueryRowContext(ctx, `
		SELECT id FROM trainers WHERE coins >= 100
		ORDER BY coins DESC LIMIT 1
	`).Scan(&trainerID)
	if err != nil {
		return "", "", err
	}
	err = e.db.QueryRowContext(ctx, `SELECT id FROM sets LIMIT 1`).Scan(&setID)
	return trainerID, setID, err
}
