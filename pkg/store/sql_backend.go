package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow 文档表，一行对应一个集合文档
type documentRow struct {
	Name      string    `gorm:"type:varchar(128);primaryKey;comment:文档名"`
	Body      string    `gorm:"type:text;not null;comment:JSON内容"`
	Version   int64     `gorm:"not null;default:0;comment:写入次数，仅用于排查"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (documentRow) TableName() string { return "document" }

// SQLBackend 将文档保存在数据库的 document 表中
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend 创建数据库后端并迁移表结构
func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if db == nil {
		return nil, errors.New("数据库未初始化")
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("迁移文档表失败: %w", err)
	}
	return &SQLBackend{db: db}, nil
}

// Read 读取文档
func (b *SQLBackend) Read(name string) ([]byte, error) {
	var row documentRow
	err := b.db.Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Body), nil
}

// Write 插入或覆盖文档，并递增版本号
func (b *SQLBackend) Write(name string, data []byte) error {
	row := documentRow{Name: name, Body: string(data), Version: 1, UpdatedAt: time.Now()}
	return b.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"body":       row.Body,
			"updated_at": row.UpdatedAt,
			"version":    gorm.Expr("version + 1"),
		}),
	}).Create(&row).Error
}

// Delete 删除文档
func (b *SQLBackend) Delete(name string) error {
	return b.db.Where("name = ?", name).Delete(&documentRow{}).Error
}

// Names 列出全部文档名
func (b *SQLBackend) Names() ([]string, error) {
	var names []string
	err := b.db.Model(&documentRow{}).Order("name").Pluck("name", &names).Error
	return names, err
}

var _ Backend = (*SQLBackend)(nil)
