package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"todo-app/internal/domain"
)

// MigrateDB 创建或更新 users 与 tasks 表。
// 返回错误以便调用者知道迁移是否成功。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	if err := migrateTable(db, "users", &domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	if err := migrateTable(db, "tasks", &domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate tasks table: %w", err)
	}

	logrus.Debug("Database migration completed successfully")
	return nil
}

// migrateTable 表不存在时创建，存在时交给 AutoMigrate 补齐列和索引
func migrateTable(db *gorm.DB, name string, model interface{}) error {
	migrator := db.Migrator()
	if !migrator.HasTable(model) {
		if err := migrator.CreateTable(model); err != nil {
			return fmt.Errorf("create %s table: %w", name, err)
		}
		logrus.Debugf("%s table created", name)
		return nil
	}
	if err := db.AutoMigrate(model); err != nil {
		return fmt.Errorf("auto-migrate %s table: %w", name, err)
	}
	logrus.Debugf("%s table schema checked/updated", name)
	return nil
}
