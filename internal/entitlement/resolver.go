package entitlement

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/config"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/observability"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// Quota kinds, used in errors and metrics.
const (
	KindPitchView  = "pitch_view"
	KindTalentView = "talent_view"
	KindTalentDM   = "talent_dm"
)

// Access is the entitlement state of a principal for one quota.
type Access struct {
	HasSubscription bool
	Remaining       int
}

// Allowed reports whether the gated action may proceed.
func (a Access) Allowed() bool { return a.HasSubscription || a.Remaining > 0 }

// ViewResult is the outcome of a gated view.
type ViewResult struct {
	AlreadyViewed bool
	Access        Access
}

// Resolver combines the subscription check with the usage counters.
type Resolver struct {
	DB     *gorm.DB
	Limits config.LimitsConfig

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewResolver builds a Resolver over db with the configured limits.
func NewResolver(db *gorm.DB, limits config.LimitsConfig) *Resolver {
	return &Resolver{DB: db, Limits: limits, Now: time.Now}
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r *Resolver) talentViews() Counter {
	return Counter{Period: Daily, Limit: r.Limits.TalentDailyViewLimit}
}

func (r *Resolver) talentDMs() Counter {
	return Counter{Period: Monthly, Limit: r.Limits.TalentMonthlyDMLimit}
}

func (r *Resolver) span(ctx context.Context, name string, p Principal) (context.Context, trace.Span) {
	return otel.Tracer("entitlement/Resolver").Start(ctx, name,
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("user.role", string(p.Role)),
		),
	)
}

// PitchAccess returns the investor's pitch-view entitlement without
// consuming anything.
func (r *Resolver) PitchAccess(ctx context.Context, investorID string) (Access, error) {
	p := Principal{UserID: investorID, Role: domain.RoleInvestor}
	ctx, span := r.span(ctx, "PitchAccess", p)
	defer span.End()

	sub, err := HasActiveSubscription(ctx, r.DB, investorID, r.now())
	if err != nil {
		return Access{}, err
	}
	prof, err := repo.GetInvestorProfile(ctx, r.DB, investorID)
	if err != nil {
		return Access{}, err
	}
	return Access{HasSubscription: sub, Remaining: prof.FreeViewsRemaining}, nil
}

// ConsumePitchView records the investor's view of pitchID. A repeated view
// returns AlreadyViewed and leaves every counter untouched. A first view by
// an unsubscribed investor spends one free view, or fails with
// ErrPaymentRequired and records nothing when the pool is empty.
func (r *Resolver) ConsumePitchView(ctx context.Context, investorID, pitchID string) (ViewResult, error) {
	p := Principal{UserID: investorID, Role: domain.RoleInvestor}
	ctx, span := r.span(ctx, "ConsumePitchView", p)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID))

	now := r.now()
	var res ViewResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := HasActiveSubscription(ctx, tx, investorID, now)
		if err != nil {
			return err
		}
		prof, err := repo.GetInvestorProfile(ctx, tx, investorID)
		if err != nil {
			return err
		}
		res.Access = Access{HasSubscription: sub, Remaining: prof.FreeViewsRemaining}

		created, err := repo.InsertPitchView(ctx, tx, pitchID, investorID)
		if err != nil {
			return err
		}
		if !created {
			res.AlreadyViewed = true
			return nil
		}
		if err := repo.IncrementPitchViewCount(ctx, tx, pitchID); err != nil {
			return err
		}
		if sub {
			return nil
		}
		ok, err := spendFreeView(tx, investorID)
		if err != nil {
			return err
		}
		if !ok {
			return &QuotaError{Kind: KindPitchView}
		}
		res.Access.Remaining = Remaining(res.Access.Remaining, 1)
		return nil
	})
	record(KindPitchView, res, err)
	if err != nil {
		return ViewResult{}, err
	}
	return res, nil
}

// TalentAccess returns the viewer's daily talent-view entitlement. A stale
// daily marker is reset and persisted first.
func (r *Resolver) TalentAccess(ctx context.Context, viewer Principal) (Access, error) {
	ctx, span := r.span(ctx, "TalentAccess", viewer)
	defer span.End()
	return r.counterAccess(ctx, r.DB.WithContext(ctx), viewer, r.talentViews())
}

// ConsumeTalentView records the viewer's view of a talent pitch, spending
// one daily view for unsubscribed viewers on first view only.
func (r *Resolver) ConsumeTalentView(ctx context.Context, viewer Principal, talentPitchID string) (ViewResult, error) {
	ctx, span := r.span(ctx, "ConsumeTalentView", viewer)
	defer span.End()
	span.SetAttributes(attribute.String("talent_pitch.id", talentPitchID))

	if err := Guard(viewer, domain.RoleFounder, domain.RoleInvestor); err != nil {
		return ViewResult{}, err
	}
	model, err := recruiterModel(viewer)
	if err != nil {
		return ViewResult{}, err
	}
	c := r.talentViews()
	now := r.now()

	// The reset is persisted on its own so a denied view does not undo it.
	if err := c.Roll(r.DB.WithContext(ctx), model, viewer.UserID, now); err != nil {
		return ViewResult{}, err
	}

	var res ViewResult
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := r.counterAccess(ctx, tx, viewer, c)
		if err != nil {
			return err
		}
		res.Access = acc

		created, err := repo.InsertTalentPitchView(ctx, tx, talentPitchID, viewer.UserID)
		if err != nil {
			return err
		}
		if !created {
			res.AlreadyViewed = true
			return nil
		}
		if err := repo.IncrementTalentPitchViewCount(ctx, tx, talentPitchID); err != nil {
			return err
		}
		if acc.HasSubscription {
			return nil
		}
		ok, err := c.Increment(tx, model, viewer.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return &QuotaError{Kind: KindTalentView}
		}
		res.Access.Remaining = Remaining(acc.Remaining, 1)
		return nil
	})
	record(KindTalentView, res, err)
	if err != nil {
		return ViewResult{}, err
	}
	return res, nil
}

// DMAccess returns the sender's monthly talent-DM entitlement.
func (r *Resolver) DMAccess(ctx context.Context, sender Principal) (Access, error) {
	ctx, span := r.span(ctx, "DMAccess", sender)
	defer span.End()
	return r.counterAccess(ctx, r.DB.WithContext(ctx), sender, r.talentDMs())
}

// ConsumeDM spends one monthly talent DM for an unsubscribed sender inside
// tx. On ErrPaymentRequired the caller must roll tx back.
func (r *Resolver) ConsumeDM(ctx context.Context, tx *gorm.DB, sender Principal) (Access, error) {
	ctx, span := r.span(ctx, "ConsumeDM", sender)
	defer span.End()

	acc, err := r.counterAccess(ctx, tx, sender, r.talentDMs())
	if err != nil {
		return Access{}, err
	}
	if acc.HasSubscription {
		observability.RecordEntitlement(KindTalentDM, observability.OutcomeSubscribed)
		return acc, nil
	}
	model, err := recruiterModel(sender)
	if err != nil {
		return Access{}, err
	}
	ok, err := r.talentDMs().Increment(tx.WithContext(ctx), model, sender.UserID)
	if err != nil {
		return Access{}, err
	}
	if !ok {
		observability.RecordEntitlement(KindTalentDM, observability.OutcomeDenied)
		return acc, &QuotaError{Kind: KindTalentDM}
	}
	observability.RecordEntitlement(KindTalentDM, observability.OutcomeConsumed)
	acc.Remaining = Remaining(acc.Remaining, 1)
	return acc, nil
}

// counterAccess rolls c for p and returns the resulting entitlement.
func (r *Resolver) counterAccess(ctx context.Context, db *gorm.DB, p Principal, c Counter) (Access, error) {
	if err := Guard(p, domain.RoleFounder, domain.RoleInvestor); err != nil {
		return Access{}, err
	}
	model, err := recruiterModel(p)
	if err != nil {
		return Access{}, err
	}
	now := r.now()
	if err := c.Roll(db.WithContext(ctx), model, p.UserID, now); err != nil {
		return Access{}, err
	}
	sub, err := Subscribed(ctx, db, p, now)
	if err != nil {
		return Access{}, err
	}
	rc, err := loadCounters(db.WithContext(ctx), p)
	if err != nil {
		return Access{}, err
	}
	return Access{HasSubscription: sub, Remaining: c.Remaining(rc)}, nil
}

func record(kind string, res ViewResult, err error) {
	switch {
	case errors.Is(err, ErrPaymentRequired):
		observability.RecordEntitlement(kind, observability.OutcomeDenied)
	case err != nil:
	case res.AlreadyViewed:
		observability.RecordEntitlement(kind, observability.OutcomeDuplicate)
	case res.Access.HasSubscription:
		observability.RecordEntitlement(kind, observability.OutcomeSubscribed)
	default:
		observability.RecordEntitlement(kind, observability.OutcomeConsumed)
	}
}
