package repository

import (
	"context"
	"errors"

	"debate_room/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// baseRepository 提供各實體共用的 CRUD
type baseRepository[T any] struct {
	db *storage.DB
}

func (r *baseRepository[T]) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *baseRepository[T]) Create(ctx context.Context, model *T) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(model).Error)
}

func (r *baseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var model T
	if err := r.conn(ctx).First(&model, id).Error; err != nil {
		return nil, translate(err)
	}
	return &model, nil
}

// findByIDForUpdate 鎖定該列直到交易結束；sqlite 會忽略鎖定子句
func (r *baseRepository[T]) findByIDForUpdate(ctx context.Context, id uint) (*T, error) {
	var model T
	err := r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &model, nil
}

// Update 只寫入本身欄位，不連帶儲存關聯
func (r *baseRepository[T]) Update(ctx context.Context, model *T) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Save(model).Error)
}

func (r *baseRepository[T]) Delete(ctx context.Context, model *T) error {
	return translate(r.conn(ctx).Delete(model).Error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
