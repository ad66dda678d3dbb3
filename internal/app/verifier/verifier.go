// Package verifier implements proximity checks and scan confirmation, the
// path that turns a physical badge scan into a point grant.
package verifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/points"
	"github.com/foxhuntgame/foxhunt/internal/domain/profile"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/geo"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// ProfileStore resolves a scanner's category
type ProfileStore interface {
	GetByID(ctx context.Context, id shared.PlayerID) (*profile.Profile, error)
}

// TokenResolver maps a scanned badge token to a player id
type TokenResolver interface {
	Resolve(scanned string) (string, error)
}

// Rejection reasons for scan confirmation
const (
	RejectionWrongTarget = "wrong_target"
	RejectionNoTarget    = "no_target_selected"
	RejectionDuplicate   = "duplicate_redemption"
)

// ProximityResult is the outcome of a proximity check
type ProximityResult struct {
	Verified  bool    `json:"verified"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// ScanResult is the outcome of a scan confirmation. Either Granted with the
// new total, or a rejection reason.
type ScanResult struct {
	Granted        bool             `json:"granted"`
	Total          int              `json:"total,omitempty"`
	TargetID       shared.PlayerID  `json:"targetId,omitempty"`
	Rejection      string           `json:"rejection,omitempty"`
	ExpectedTarget *shared.PlayerID `json:"expectedTarget,omitempty"`
}

// TargetInfo is the resolved hunt assignment for one player
type TargetInfo struct {
	Category       shared.Category `json:"category"`
	TargetCategory shared.Category `json:"targetCategory"`
	TargetID       shared.PlayerID `json:"targetId"`
	Fix            location.Fix    `json:"fix"`
}

// Verifier checks proximity and confirms scans. It reads the location store
// and the active selection, and delegates grants to the points ledger; only
// the ledger step mutates state.
type Verifier struct {
	logger         *logger.Logger
	profiles       ProfileStore
	locations      *location.Store
	holder         *selection.Holder
	ledger         *points.Ledger
	tokens         TokenResolver
	threshold      float64
	profileTimeout time.Duration
}

// New creates a verifier with a fixed proximity threshold in meters
func New(profiles ProfileStore, locations *location.Store, holder *selection.Holder, ledger *points.Ledger, tokens TokenResolver, threshold float64, profileTimeout time.Duration, log *logger.Logger) *Verifier {
	return &Verifier{
		logger:         log.WithComponent("verifier"),
		profiles:       profiles,
		locations:      locations,
		holder:         holder,
		ledger:         ledger,
		tokens:         tokens,
		threshold:      threshold,
		profileTimeout: profileTimeout,
	}
}

// VerifyProximity computes the great-circle distance between two players and
// compares it to the threshold. Never mutates state.
func (v *Verifier) VerifyProximity(_ context.Context, idA, idB shared.PlayerID) (ProximityResult, error) {
	fixA, ok := v.locations.Get(idA)
	if !ok {
		return ProximityResult{}, shared.NewNotFound("no known location for %s", idA)
	}

	fixB, ok := v.locations.Get(idB)
	if !ok {
		return ProximityResult{}, shared.NewNotFound("no known location for %s", idB)
	}

	distance := geo.Distance(fixA.Point(), fixB.Point())

	return ProximityResult{
		Verified:  distance <= v.threshold,
		Distance:  distance,
		Threshold: v.threshold,
	}, nil
}

// TargetLookup resolves a player's category, the opposite category's current
// target and that target's last known location. NotFound when any link in
// the chain is missing.
func (v *Verifier) TargetLookup(ctx context.Context, playerID shared.PlayerID) (TargetInfo, error) {
	p, err := v.scannerProfile(ctx, playerID)
	if err != nil {
		return TargetInfo{}, err
	}

	targetCategory := p.Category.Opposite()
	target := v.holder.Current().TargetOf(targetCategory)
	if target == nil {
		return TargetInfo{}, shared.NewNotFound("no target currently selected for category %s", targetCategory)
	}

	fix, ok := v.locations.Get(*target)
	if !ok {
		return TargetInfo{}, shared.NewNotFound("no known location for target %s", *target)
	}

	return TargetInfo{
		Category:       p.Category,
		TargetCategory: targetCategory,
		TargetID:       *target,
		Fix:            fix,
	}, nil
}

// ConfirmScan verifies a badge scan against the active selection and grants
// a point through the ledger on a match. Confirmation trusts the scan event
// as physical-presence proof; proximity is checked at selection time, not
// re-validated here.
func (v *Verifier) ConfirmScan(ctx context.Context, scannerID shared.PlayerID, scannedToken string) (ScanResult, error) {
	scannedID, err := v.tokens.Resolve(scannedToken)
	if err != nil {
		return ScanResult{}, shared.NewInvalidInput("unresolvable badge token: %v", err)
	}

	p, err := v.scannerProfile(ctx, scannerID)
	if err != nil {
		return ScanResult{}, err
	}

	targetCategory := p.Category.Opposite()
	target := v.holder.Current().TargetOf(targetCategory)
	if target == nil {
		return ScanResult{
			Rejection: RejectionNoTarget,
		}, nil
	}

	if shared.PlayerID(scannedID) != *target {
		v.logger.Info("Scan rejected: wrong target",
			zap.String("scannerId", scannerID.String()),
			zap.String("scannedId", scannedID),
			zap.String("expected", target.String()))
		return ScanResult{
			Rejection:      RejectionWrongTarget,
			ExpectedTarget: target,
		}, nil
	}

	accepted, total, err := v.ledger.Increment(ctx, scannerID, *target)
	if err != nil {
		return ScanResult{}, err
	}

	if !accepted {
		return ScanResult{
			Rejection: RejectionDuplicate,
			Total:     total,
			TargetID:  *target,
		}, nil
	}

	v.logger.Info("Scan confirmed",
		zap.String("scannerId", scannerID.String()),
		zap.String("targetId", target.String()),
		zap.Int("total", total))

	return ScanResult{
		Granted:  true,
		Total:    total,
		TargetID: *target,
	}, nil
}

// scannerProfile fetches a profile with the configured timeout, translating
// a missing profile to NotFound
func (v *Verifier) scannerProfile(ctx context.Context, playerID shared.PlayerID) (*profile.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, v.profileTimeout)
	defer cancel()

	p, err := v.profiles.GetByID(ctx, playerID)
	if err != nil {
		if shared.Kind(err) != "" {
			return nil, err
		}
		return nil, shared.NewUnavailable(err, "profile lookup failed for %s", playerID)
	}
	if p == nil {
		return nil, shared.NewNotFound("no profile for %s", playerID)
	}
	return p, nil
}
