package layout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type layoutModel struct {
	ID        string         `gorm:"primaryKey;column:id"`
	Name      string         `gorm:"column:name"`
	Charts    datatypes.JSON `gorm:"column:charts"`
	IsDefault bool           `gorm:"column:is_default"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (layoutModel) TableName() string { return "dashboard_layouts" }

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&layoutModel{})
}

func (r *GormRepository) List(ctx context.Context) ([]Layout, error) {
	var rows []layoutModel
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Layout, 0, len(rows))
	for i := range rows {
		l, err := rows[i].toLayout()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (Layout, error) {
	var row layoutModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Layout{}, ErrNotFound
		}
		return Layout{}, err
	}
	return row.toLayout()
}

func (r *GormRepository) Create(ctx context.Context, l Layout) error {
	row, err := fromLayout(l)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	err = r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *GormRepository) Update(ctx context.Context, l Layout) error {
	row, err := fromLayout(l)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&layoutModel{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"name":       row.Name,
		"charts":     row.Charts,
		"is_default": row.IsDefault,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func fromLayout(l Layout) (layoutModel, error) {
	chartList := l.Charts
	if chartList == nil {
		chartList = []ChartConfig{}
	}
	data, err := json.Marshal(chartList)
	if err != nil {
		return layoutModel{}, err
	}
	return layoutModel{ID: l.ID, Name: l.Name, Charts: datatypes.JSON(data), IsDefault: l.IsDefault}, nil
}

func (m *layoutModel) toLayout() (Layout, error) {
	l := Layout{ID: m.ID, Name: m.Name, IsDefault: m.IsDefault, Charts: []ChartConfig{}}
	if len(m.Charts) > 0 {
		if err := json.Unmarshal(m.Charts, &l.Charts); err != nil {
			return Layout{}, err
		}
	}
	return l, nil
}
