package points

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// Ledger grants points for confirmed scans and answers standings queries.
// One point per unique scanner/target pair, enforced by the redeemed set
// inside the repository's atomic upsert.
type Ledger struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewLedger creates a new points ledger on top of a repository
func NewLedger(repo Repository, log *logger.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		logger: log.WithComponent("points-ledger"),
		now:    time.Now,
	}
}

// Increment grants one point to playerID for targetID unless the target was
// already redeemed. Returns accepted=false for a duplicate, with the
// unchanged total.
func (l *Ledger) Increment(ctx context.Context, playerID, targetID shared.PlayerID) (accepted bool, total int, err error) {
	err = l.repo.FindOneAndUpsert(ctx, playerID, func(current *Record) (*Record, error) {
		if current == nil {
			current = NewRecord(playerID)
		}

		if current.HasRedeemed(targetID) {
			accepted = false
			total = current.Total
			return current, nil
		}

		current.Redeemed = append(current.Redeemed, targetID.String())
		current.Total++
		current.UpdatedAt = l.now()

		accepted = true
		total = current.Total
		return current, nil
	})
	if err != nil {
		return false, 0, shared.NewUnavailable(err, "points store rejected increment for %s", playerID)
	}

	if accepted {
		l.logger.Info("Point granted",
			zap.String("playerId", playerID.String()),
			zap.String("targetId", targetID.String()),
			zap.Int("total", total))
	}

	return accepted, total, nil
}

// Lookup returns the player's record, a zero record when none exists yet
func (l *Ledger) Lookup(ctx context.Context, playerID shared.PlayerID) (Record, error) {
	record, err := l.repo.GetByID(ctx, playerID)
	if err != nil {
		return Record{}, shared.NewUnavailable(err, "points store lookup failed for %s", playerID)
	}
	if record == nil {
		return *NewRecord(playerID), nil
	}
	return *record, nil
}

// Leaderboard returns all records ordered by total descending. Equal totals
// rank the earlier UpdatedAt first, then lexical player id, so the order is
// deterministic.
func (l *Ledger) Leaderboard(ctx context.Context) ([]Record, error) {
	records, err := l.repo.List(ctx)
	if err != nil {
		return nil, shared.NewUnavailable(err, "points store listing failed")
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Total != records[j].Total {
			return records[i].Total > records[j].Total
		}
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.Before(records[j].UpdatedAt)
		}
		return records[i].PlayerID < records[j].PlayerID
	})

	return records, nil
}
