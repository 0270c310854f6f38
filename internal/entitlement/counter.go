package entitlement

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// Period selects how a Counter's reset marker is computed.
type Period int

const (
	// Daily counters reset when the UTC date changes.
	Daily Period = iota
	// Monthly counters reset when the UTC (month, year) changes.
	Monthly
)

// DayMarker is the daily reset marker for t.
func DayMarker(t time.Time) string { return t.UTC().Format("2006-01-02") }

// MonthMarker is the monthly reset marker for t.
func MonthMarker(t time.Time) (month, year int) {
	t = t.UTC()
	return int(t.Month()), t.Year()
}

// Remaining clamps limit-used at zero.
func Remaining(limit, used int) int {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}

// Counter is a rolling per-profile quota stored in domain.RecruiterCounters.
// Resets are lazy: Roll must run before the count is read or incremented.
type Counter struct {
	Period Period
	Limit  int
}

func (c Counter) column() string {
	if c.Period == Monthly {
		return "talent_dms_this_month"
	}
	return "talent_views_today"
}

// Used returns the counter value from rc. rc must have been loaded after Roll.
func (c Counter) Used(rc domain.RecruiterCounters) int {
	if c.Period == Monthly {
		return rc.TalentDMsThisMonth
	}
	return rc.TalentViewsToday
}

// Remaining returns the quota left in rc.
func (c Counter) Remaining(rc domain.RecruiterCounters) int {
	return Remaining(c.Limit, c.Used(rc))
}

// Roll zeroes the counter and advances its marker when the stored marker is
// not the period containing now. It is a no-op within the current period.
func (c Counter) Roll(tx *gorm.DB, model any, userID string, now time.Time) error {
	q := tx.Model(model)
	switch c.Period {
	case Monthly:
		m, y := MonthMarker(now)
		q = q.Where("user_id = ? AND NOT (talent_dms_reset_month = ? AND talent_dms_reset_year = ?)", userID, m, y).
			Updates(map[string]any{
				"talent_dms_this_month":  0,
				"talent_dms_reset_month": m,
				"talent_dms_reset_year":  y,
			})
	default:
		day := DayMarker(now)
		q = q.Where("user_id = ? AND (talent_views_reset_date IS NULL OR talent_views_reset_date <> ?)", userID, day).
			Updates(map[string]any{
				"talent_views_today":      0,
				"talent_views_reset_date": day,
			})
	}
	return q.Error
}

// Increment adds one to the counter unless it already reached Limit. It
// reports false when the quota is exhausted.
func (c Counter) Increment(tx *gorm.DB, model any, userID string) (bool, error) {
	col := c.column()
	res := tx.Model(model).
		Where("user_id = ? AND "+col+" < ?", userID, c.Limit).
		UpdateColumn(col, gorm.Expr(col+" + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// recruiterModel returns the profile model holding p's recruiter counters.
func recruiterModel(p Principal) (any, error) {
	switch p.Role {
	case domain.RoleFounder:
		return &domain.FounderProfile{}, nil
	case domain.RoleInvestor:
		return &domain.InvestorProfile{}, nil
	}
	return nil, fmt.Errorf("role %q has no recruiter counters", p.Role)
}

// loadCounters reads p's recruiter counters from its profile row.
func loadCounters(tx *gorm.DB, p Principal) (domain.RecruiterCounters, error) {
	switch p.Role {
	case domain.RoleFounder:
		var fp domain.FounderProfile
		if err := tx.Where("user_id = ?", p.UserID).First(&fp).Error; err != nil {
			return domain.RecruiterCounters{}, err
		}
		return fp.RecruiterCounters, nil
	case domain.RoleInvestor:
		var ip domain.InvestorProfile
		if err := tx.Where("user_id = ?", p.UserID).First(&ip).Error; err != nil {
			return domain.RecruiterCounters{}, err
		}
		return ip.RecruiterCounters, nil
	}
	return domain.RecruiterCounters{}, fmt.Errorf("role %q has no recruiter counters", p.Role)
}

// spendFreeView decrements the investor's non-resetting free view pool. It
// reports false when the pool is empty.
func spendFreeView(tx *gorm.DB, investorID string) (bool, error) {
	res := tx.Model(&domain.InvestorProfile{}).
		Where("user_id = ? AND free_views_remaining > 0", investorID).
		UpdateColumn("free_views_remaining", gorm.Expr("free_views_remaining - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
