package repository

import (
	"context"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/gorm"
)

type SeriesRepository interface {
	Create(ctx context.Context, series *models.BookingSeries) error
	FindByID(ctx context.Context, id uint) (*models.BookingSeries, error)
	Save(ctx context.Context, tx *gorm.DB, series *models.BookingSeries) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *models.SeriesItem) error
	ListItems(ctx context.Context, seriesID uint) ([]models.SeriesItem, error)
	GetDB() *gorm.DB
}

type seriesRepository struct {
	db *gorm.DB
}

func NewSeriesRepository(db *gorm.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *seriesRepository) Create(ctx context.Context, series *models.BookingSeries) error {
	return r.db.WithContext(ctx).Create(series).Error
}

func (r *seriesRepository) FindByID(ctx context.Context, id uint) (*models.BookingSeries, error) {
	var series models.BookingSeries
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&series, id).Error
	if err != nil {
		return nil, err
	}
	return &series, nil
}

func (r *seriesRepository) Save(ctx context.Context, tx *gorm.DB, series *models.BookingSeries) error {
	return tx.WithContext(ctx).Save(series).Error
}

func (r *seriesRepository) CreateItem(ctx context.Context, tx *gorm.DB, item *models.SeriesItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *seriesRepository) ListItems(ctx context.Context, seriesID uint) ([]models.SeriesItem, error) {
	var items []models.SeriesItem
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("occurrence_index ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
