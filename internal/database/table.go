package database

import (
	"context"

	"github.com/thereayou/blog-api/pkg/pagination"
	"gorm.io/gorm"
)

// Scope narrows a query, see ForPost.
type Scope = func(*gorm.DB) *gorm.DB

// Table is the persistence for one model type, shared by every generic handler.
type Table[M any] struct {
	db *gorm.DB
}

func NewTable[M any](d *Database) *Table[M] {
	return &Table[M]{db: d.db}
}

func (t *Table[M]) Create(ctx context.Context, m *M) error {
	return t.db.WithContext(ctx).Create(m).Error
}

func (t *Table[M]) Get(ctx context.Context, id uint) (*M, error) {
	m := new(M)
	if err := t.db.WithContext(ctx).First(m, id).Error; err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (t *Table[M]) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Table[M]) Save(ctx context.Context, m *M) error {
	return t.db.WithContext(ctx).Save(m).Error
}

func (t *Table[M]) Delete(ctx context.Context, m *M) error {
	res := t.db.WithContext(ctx).Delete(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Page returns one page of rows ordered by id, and the total row count, after applying scopes.
func (t *Table[M]) Page(ctx context.Context, p pagination.Params, scopes ...Scope) ([]M, int64, error) {
	var total int64
	if err := t.db.WithContext(ctx).Model(new(M)).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []M
	err := t.db.WithContext(ctx).
		Scopes(scopes...).
		Order("id ASC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
