package repository

import (
	"eduspark_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRecordRepository struct {
	DB *gorm.DB
}

func NewAssessmentRecordRepository(db *gorm.DB) *AssessmentRecordRepository {
	return &AssessmentRecordRepository{DB: db}
}

func (r *AssessmentRecordRepository) Create(record *model.AssessmentRecord) error {
	return r.DB.Create(record).Error
}

func (r *AssessmentRecordRepository) ListByUser(userID uint, limit int) ([]model.AssessmentRecord, error) {
	var recs []model.AssessmentRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(limit).Find(&recs).Error
	return recs, err
}
