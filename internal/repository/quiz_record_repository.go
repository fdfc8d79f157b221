package repository

import (
	"eduspark_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRecordRepository struct {
	DB *gorm.DB
}

func NewQuizRecordRepository(db *gorm.DB) *QuizRecordRepository {
	return &QuizRecordRepository{DB: db}
}

func (r *QuizRecordRepository) Create(record *model.QuizRecord) error {
	return r.DB.Create(record).Error
}

func (r *QuizRecordRepository) FindLatestByUser(userID uint) (*model.QuizRecord, error) {
	var rec model.QuizRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *QuizRecordRepository) ListByUser(userID uint, limit int) ([]model.QuizRecord, error) {
	var recs []model.QuizRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(limit).Find(&recs).Error
	return recs, err
}
