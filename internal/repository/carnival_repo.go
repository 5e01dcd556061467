package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/utils/normalize"

	"gorm.io/gorm"
)

// CarnivalRepository 嘉年华仓储；查找类方法未命中时返回 (nil, nil)
type CarnivalRepository interface {
	// InTx 在单条记录事务中执行 fn，fn 收到绑定事务的仓储
	InTx(ctx context.Context, fn func(repo CarnivalRepository) error) error
	// FindByMySidelineID 按外部稳定 ID 查找（排除手工录入）
	FindByMySidelineID(ctx context.Context, mySidelineID string) (*model.Carnival, error)
	// HasManualWithMySidelineID 外部 ID 是否已被手工录入的记录占用
	HasManualWithMySidelineID(ctx context.Context, mySidelineID string) (bool, error)
	// FindByLegacyFields 按不可变快照三元组查找；address 为空时只比较标题与日期
	FindByLegacyFields(ctx context.Context, title string, date time.Time, address string) (*model.Carnival, error)
	// FindByDateAndTitle 按展示日期 + 标题兜底查找
	FindByDateAndTitle(ctx context.Context, date time.Time, title string) (*model.Carnival, error)
	GetByID(ctx context.Context, id uint64) (*model.Carnival, error)
	Create(ctx context.Context, c *model.Carnival) error
	UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error
	// DeactivatePast 将 date 早于 before 的活跃记录置为未激活，返回影响行数
	DeactivatePast(ctx context.Context, before time.Time) (int64, error)
	List(ctx context.Context, filter CarnivalFilter, page, pageSize int) ([]*model.Carnival, int64, error)
}

// CarnivalFilter 嘉年华列表筛选
type CarnivalFilter struct {
	State    string
	Active   *bool
	FromDate *time.Time
}

type carnivalRepository struct {
	db *gorm.DB
}

func NewCarnivalRepository(db *gorm.DB) CarnivalRepository {
	return &carnivalRepository{db: db}
}

func (r *carnivalRepository) InTx(ctx context.Context, fn func(repo CarnivalRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&carnivalRepository{db: tx})
	})
}

func (r *carnivalRepository) FindByMySidelineID(ctx context.Context, mySidelineID string) (*model.Carnival, error) {
	return r.first(r.syncable(ctx).Where("mysideline_id = ?", mySidelineID))
}

func (r *carnivalRepository) HasManualWithMySidelineID(ctx context.Context, mySidelineID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Carnival{}).
		Where("is_manually_entered = ?", true).
		Where("mysideline_id = ?", mySidelineID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("查询手工记录外部ID失败: %w", err)
	}
	return n > 0, nil
}

func (r *carnivalRepository) FindByLegacyFields(ctx context.Context, title string, date time.Time, address string) (*model.Carnival, error) {
	start, end := normalize.DayBounds(date)
	q := r.syncable(ctx).
		Where("mysideline_title = ?", title).
		Where("mysideline_date >= ? AND mysideline_date < ?", start, end)
	if address != "" {
		q = q.Where("mysideline_address = ?", address)
	}
	return r.first(q)
}

func (r *carnivalRepository) FindByDateAndTitle(ctx context.Context, date time.Time, title string) (*model.Carnival, error) {
	start, end := normalize.DayBounds(date)
	return r.first(r.syncable(ctx).
		Where("title = ?", title).
		Where("date >= ? AND date < ?", start, end))
}

func (r *carnivalRepository) GetByID(ctx context.Context, id uint64) (*model.Carnival, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *carnivalRepository) Create(ctx context.Context, c *model.Carnival) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("保存Carnival失败: %w, title: %s", err, c.Title)
	}
	return nil
}

func (r *carnivalRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Carnival{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("更新Carnival失败: %w, id: %d", err, id)
	}
	return nil
}

func (r *carnivalRepository) DeactivatePast(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Carnival{}).
		Where("is_active = ?", true).
		Where("date IS NOT NULL AND date < ?", before).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("停用过期Carnival失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *carnivalRepository) List(ctx context.Context, filter CarnivalFilter, page, pageSize int) ([]*model.Carnival, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Carnival{})
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	if filter.FromDate != nil {
		db = db.Where("date >= ?", *filter.FromDate)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Carnival
	if err := db.Order("date ASC").Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// syncable 同步引擎只能看到非手工录入的记录
func (r *carnivalRepository) syncable(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Carnival{}).Where("is_manually_entered = ?", false)
}

func (r *carnivalRepository) first(q *gorm.DB) (*model.Carnival, error) {
	var c model.Carnival
	if err := q.Order("id ASC").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
