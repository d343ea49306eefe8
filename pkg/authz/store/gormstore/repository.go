// Package gormstore persists policy rules in a relational table via GORM.
// It backs the authz.Repository contract with MySQL, PostgreSQL or SQLite
// depending on the dialector the caller opened.
package gormstore

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// RuleRow is the database model for a policy rule. The composite unique
// index over (p_type, v0..v5) is the only concurrency control for duplicate
// inserts: races resolve by constraint violation, not application locking.
type RuleRow struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	PType string `gorm:"column:p_type;size:100;uniqueIndex:idx_aegis_rule,priority:1;index"`
	V0    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:2"`
	V1    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:3"`
	V2    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:4"`
	V3    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:5"`
	V4    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:6"`
	V5    string `gorm:"size:100;uniqueIndex:idx_aegis_rule,priority:7"`
}

// TableName sets the table name.
func (RuleRow) TableName() string {
	return "aegis_rule"
}

var valueColumns = [authz.MaxRuleFields]string{"v0", "v1", "v2", "v3", "v4", "v5"}

func encodeRule(r authz.Rule) RuleRow {
	row := RuleRow{PType: r.PType}
	dst := [authz.MaxRuleFields]*string{&row.V0, &row.V1, &row.V2, &row.V3, &row.V4, &row.V5}
	for i, f := range r.Fields {
		*dst[i] = f
	}
	return row
}

func decodeRule(row RuleRow) authz.Rule {
	// Empty trailing columns mean the field is absent for this ptype's
	// arity; NewRule trims them back out of the tuple.
	return authz.NewRule(row.PType, row.V0, row.V1, row.V2, row.V3, row.V4, row.V5)
}

// tupleConditions matches the full tuple exactly, including empty columns,
// so that short rules cannot accidentally match longer ones.
func tupleConditions(r authz.Rule) map[string]interface{} {
	cond := map[string]interface{}{"p_type": r.PType}
	for i, col := range valueColumns {
		cond[col] = r.Field(i)
	}
	return cond
}

// Repository implements authz.Repository over a GORM connection.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates the repository and migrates the rule table.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&RuleRow{}); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &Repository{db: db}, nil
}

// LoadAll returns every stored rule.
func (r *Repository) LoadAll(ctx context.Context) ([]authz.Rule, error) {
	var rows []RuleRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, wrapDBError(err)
	}
	return decodeRows(rows), nil
}

// LoadFiltered returns the rules matching the filter: OR across all
// (ptype, pattern) pairs, AND across the non-empty values of one pattern.
func (r *Repository) LoadFiltered(ctx context.Context, filter authz.Filter) ([]authz.Rule, error) {
	query := r.db.WithContext(ctx).Model(&RuleRow{})

	var disjunction *gorm.DB
	for ptype, patterns := range filter {
		for _, pattern := range patterns {
			cond := r.db.Where("p_type = ?", ptype)
			for i, v := range pattern {
				if i >= authz.MaxRuleFields {
					break
				}
				if v != "" {
					cond = cond.Where(valueColumns[i]+" = ?", v)
				}
			}
			if disjunction == nil {
				disjunction = cond
			} else {
				disjunction = disjunction.Or(cond)
			}
		}
	}
	if disjunction != nil {
		query = query.Where(disjunction)
	}

	var rows []RuleRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, wrapDBError(err)
	}
	return decodeRows(rows), nil
}

// ReplaceAll rewrites the table in a single transaction, so a concurrent
// reader never observes the truncated-but-not-repopulated window.
func (r *Repository) ReplaceAll(ctx context.Context, rules []authz.Rule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RuleRow{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		rows := make([]RuleRow, len(rules))
		for i, rule := range rules {
			rows[i] = encodeRule(rule)
		}
		return tx.CreateInBatches(rows, 500).Error
	})
	return wrapDBError(err)
}

// Add inserts a single rule; an existing tuple is a conflict.
func (r *Repository) Add(ctx context.Context, rule authz.Rule) error {
	row := encodeRule(rule)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wrapDBError(err)
	}
	return nil
}

// AddBatch inserts rules in one transaction, skipping existing tuples.
func (r *Repository) AddBatch(ctx context.Context, rules []authz.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	rows := make([]RuleRow, len(rules))
	for i, rule := range rules {
		rows[i] = encodeRule(rule)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 500).Error
	})
	return wrapDBError(err)
}

// Remove deletes the rule matching the full tuple exactly.
func (r *Repository) Remove(ctx context.Context, rule authz.Rule) error {
	err := r.db.WithContext(ctx).Where(tupleConditions(rule)).Delete(&RuleRow{}).Error
	return wrapDBError(err)
}

// RemoveBatch deletes rules in one transaction.
func (r *Repository) RemoveBatch(ctx context.Context, rules []authz.Rule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rule := range rules {
			if err := tx.Where(tupleConditions(rule)).Delete(&RuleRow{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapDBError(err)
}

// RemoveFiltered deletes rules of the given ptype matching the positional
// values starting at fieldIndex, and returns what was removed.
func (r *Repository) RemoveFiltered(ctx context.Context, ptype string, fieldIndex int, fieldValues ...string) ([]authz.Rule, error) {
	var removed []RuleRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = removeFilteredTx(tx, ptype, fieldIndex, fieldValues)
		return err
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return decodeRows(removed), nil
}

// ReplaceFiltered removes the matching rules and inserts the new ones in
// one transaction; a failed insert rolls the removal back too.
func (r *Repository) ReplaceFiltered(ctx context.Context, ptype string, fieldIndex int, fieldValues []string, newRules []authz.Rule) ([]authz.Rule, error) {
	var removed []RuleRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = removeFilteredTx(tx, ptype, fieldIndex, fieldValues)
		if err != nil {
			return err
		}
		for _, rule := range newRules {
			row := encodeRule(rule)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return decodeRows(removed), nil
}

func removeFilteredTx(tx *gorm.DB, ptype string, fieldIndex int, fieldValues []string) ([]RuleRow, error) {
	query := tx.Where("p_type = ?", ptype)
	for offset, v := range fieldValues {
		idx := fieldIndex + offset
		if idx >= authz.MaxRuleFields {
			break
		}
		if v != "" {
			query = query.Where(valueColumns[idx]+" = ?", v)
		}
	}
	var removed []RuleRow
	if err := query.Find(&removed).Error; err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return removed, nil
	}
	ids := make([]uint64, len(removed))
	for i, row := range removed {
		ids[i] = row.ID
	}
	return removed, tx.Delete(&RuleRow{}, ids).Error
}

// Replace deletes old tuples and inserts new ones in one transaction.
func (r *Repository) Replace(ctx context.Context, oldRules, newRules []authz.Rule) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rule := range oldRules {
			if err := tx.Where(tupleConditions(rule)).Delete(&RuleRow{}).Error; err != nil {
				return err
			}
		}
		for _, rule := range newRules {
			row := encodeRule(rule)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapDBError(err)
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func decodeRows(rows []RuleRow) []authz.Rule {
	rules := make([]authz.Rule, len(rows))
	for i, row := range rows {
		rules[i] = decodeRule(row)
	}
	return rules
}

func wrapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ErrTimeout.WithCause(err)
	case isDuplicate(err):
		return errors.ErrAlreadyExists.WithCause(err)
	default:
		return errors.ErrDatabase.WithCause(err)
	}
}

// isDuplicate detects unique-constraint violations across the supported
// dialects; not every driver translates them to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "UNIQUE constraint") // sqlite
}

var _ authz.Repository = (*Repository)(nil)
