package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
)

// Open открывает SQLite-базу и создаёт таблицы журнала.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&entity.ImageAnalysis{},
		&entity.SprayLog{},
		&entity.SensorReading{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// GormAnalysisRepository — журнал анализов и опрыскиваний поверх gorm.
// Записи только добавляются; идентификатор и время создания назначает база.
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository создаёт репозиторий поверх открытой базы.
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// SaveAnalysis сохраняет запись об анализе и заполняет ID и CreatedAt.
func (r *GormAnalysisRepository) SaveAnalysis(ctx context.Context, analysis *entity.ImageAnalysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// SaveSpray сохраняет запись об опрыскивании и заполняет ID и CreatedAt.
func (r *GormAnalysisRepository) SaveSpray(ctx context.Context, spray *entity.SprayLog) error {
	if err := r.db.WithContext(ctx).Create(spray).Error; err != nil {
		return fmt.Errorf("insert spray log: %w", err)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.AnalysisRepository = (*GormAnalysisRepository)(nil)
