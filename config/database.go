package config

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/yassir1410/ModernToDoList/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并迁移表结构
func InitDB(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(config.SQLitePath)
	default:
		dialector = mysql.Open(config.GetDBConnString())
	}

	logLevel := logger.Info
	if config.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := MigrateDB(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateDB 进行数据库表结构迁移
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Todo{},
		&models.Subtask{},
		&models.TodoTag{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %v", err)
	}
	if err := backfillSearchText(db); err != nil {
		return fmt.Errorf("回填搜索字段失败: %v", err)
	}
	return nil
}

// backfillSearchText 为新增 search_text 列之前写入的待办补齐搜索字段
func backfillSearchText(db *gorm.DB) error {
	var batch []models.Todo
	return db.Model(&models.Todo{}).
		Select("id", "title", "description").
		Where("search_text IS NULL OR search_text = ''").
		FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				batch[i].RefreshSearchText()
				err := db.Model(&models.Todo{}).Where("id = ?", batch[i].ID).
					UpdateColumn("search_text", batch[i].SearchText).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}
