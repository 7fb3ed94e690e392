package storage

import (
	"context"

	"loggit/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Postgres is the remote persistence tier.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.User{}, &models.WorkEntry{}, &models.VerificationRecord{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := p.db.WithContext(ctx).Order("full_name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (p *Postgres) ListEntries(ctx context.Context) ([]models.WorkEntry, error) {
	var entries []models.WorkEntry
	if err := p.db.WithContext(ctx).Order("date desc, created_at asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *Postgres) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	var records []models.VerificationRecord
	if err := p.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Postgres) PutEntry(ctx context.Context, entry models.WorkEntry) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
}

func (p *Postgres) RemoveEntry(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&models.WorkEntry{}, "id = ?", id).Error
}

func (p *Postgres) PutVerification(ctx context.Context, subjectID, periodKey string, verified bool) error {
	record := models.VerificationRecord{
		SubjectID:  subjectID,
		PeriodKey:  periodKey,
		IsVerified: verified,
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "period_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_verified", "updated_at"}),
		}).
		Create(&record).Error
}

func (p *Postgres) PutUser(ctx context.Context, user models.User) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&user).Error
}

func (p *Postgres) PatchUser(ctx context.Context, id string, patch models.UserPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (p *Postgres) RemoveUser(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
