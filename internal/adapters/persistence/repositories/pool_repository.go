package repositories

import (
	"context"
	"errors"

	"aquahope-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// poolRepository implements PoolRepository interface
type poolRepository struct {
	db *gorm.DB
}

// NewPoolRepository creates a new yield pool repository
func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

// GetAccount gets the pool account of a contributor, nil when none exists
func (r *poolRepository) GetAccount(ctx context.Context, contributor string) (*models.PoolAccount, error) {
	var account models.PoolAccount
	err := r.db.WithContext(ctx).Where("contributor = ?", contributor).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts lists all pool accounts
func (r *poolRepository) ListAccounts(ctx context.Context) ([]*models.PoolAccount, error) {
	var accounts []*models.PoolAccount
	err := r.db.WithContext(ctx).Order("contributor ASC").Find(&accounts).Error
	return accounts, err
}

// GetTotals gets the pool totals row, creating it on first use
func (r *poolRepository) GetTotals(ctx context.Context) (*models.PoolTotals, error) {
	var totals models.PoolTotals
	err := r.db.WithContext(ctx).Where("id = ?", 1).First(&totals).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		totals = models.PoolTotals{ID: 1}
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&totals).Error; err != nil {
			return nil, err
		}
		return &totals, nil
	}
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// Deposit adds principal to one contributor's account and to the totals row
func (r *poolRepository) Deposit(ctx context.Context, contributor string, amountMicro int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "contributor"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"principal_micro": gorm.Expr("principal_micro + ?", amountMicro),
			}),
		}).Create(&models.PoolAccount{
			Contributor:    contributor,
			PrincipalMicro: amountMicro,
		}).Error; err != nil {
			return err
		}
		return addToTotals(tx, map[string]int64{"principal_micro": amountMicro})
	})
}

// Accrue distributes yield shares onto the contributor accounts and records
// the nominal total plus its bucket split on the totals row
func (r *poolRepository) Accrue(ctx context.Context, shares map[string]int64, totalMicro, maintenanceMicro, projectMicro int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for contributor, share := range shares {
			if share == 0 {
				continue
			}
			res := tx.Model(&models.PoolAccount{}).
				Where("contributor = ?", contributor).
				UpdateColumn("earned_micro", gorm.Expr("earned_micro + ?", share))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return addToTotals(tx, map[string]int64{
			"earned_micro":      totalMicro,
			"maintenance_micro": maintenanceMicro,
			"project_micro":     projectMicro,
		})
	})
}

// Withdraw moves earned yield out of one contributor's account
func (r *poolRepository) Withdraw(ctx context.Context, contributor string, amountMicro int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PoolAccount{}).
			Where("contributor = ?", contributor).
			Where("earned_micro - withdrawn_micro >= ?", amountMicro).
			UpdateColumn("withdrawn_micro", gorm.Expr("withdrawn_micro + ?", amountMicro))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return addToTotals(tx, map[string]int64{"withdrawn_micro": amountMicro})
	})
}

// addToTotals increments columns on the singleton totals row
func addToTotals(tx *gorm.DB, increments map[string]int64) error {
	updates := make(map[string]interface{}, len(increments))
	for column, delta := range increments {
		updates[column] = gorm.Expr(column+" + ?", delta)
	}
	res := tx.Model(&models.PoolTotals{}).Where("id = ?", 1).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
