package repository

import (
	"context"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/dto"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error)
	List(ctx context.Context, day *time.Time, page dto.PageQuery) ([]model.Note, int64, error)
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type noteRepo struct{ db *gorm.DB }

func NewNoteRepository(db *gorm.DB) NoteRepository { return &noteRepo{db: db} }

func (r *noteRepo) Create(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Omit("User").Create(n).Error
}

func (r *noteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var n model.Note
	err := r.db.WithContext(ctx).Preload("User").First(&n, "id = ?", id).Error
	return &n, err
}

func (r *noteRepo) List(ctx context.Context, day *time.Time, page dto.PageQuery) ([]model.Note, int64, error) {
	var notes []model.Note
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Note{})
	if day != nil {
		q = q.Where("date = ?", day.Format(dto.DateLayout))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&notes).Error
	return notes, total, err
}

func (r *noteRepo) Update(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Omit("User").Save(n).Error
}

func (r *noteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
