// Package gormdb 开发后端的数据访问层
// 负责建立数据库连接、自动迁移表结构、初始化 Repository 层
package gormdb

import (
	"fmt"

	"campus_lostfound/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 按配置打开数据库并迁移表结构
// driver 为 "sqlite"（默认）或 "mysql"
func Open(conf *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(conf.SqlitePath)
	case "mysql":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			conf.User,
			conf.Password,
			conf.Host,
			conf.Port,
			conf.DatabaseName,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("gormdb: unsupported driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb: open %s: %w", conf.Driver, err)
	}
	if dialector.Name() == "sqlite" {
		// sqlite 单写者，多连接会出现 database is locked
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	// 如果表不存在则创建，不会删除已有字段或数据
	if err := db.AutoMigrate(&UserEntity{}, &PostEntity{}, &MessageEntity{}); err != nil {
		return nil, fmt.Errorf("gormdb: migrate: %w", err)
	}
	zap.L().Info("database ready", zap.String("driver", dialector.Name()))
	return db, nil
}

// Init 打开数据库并返回 Repository 实例集合
func Init(conf *config.DatabaseConfig) (*Repositories, error) {
	db, err := Open(conf)
	if err != nil {
		return nil, err
	}
	return NewRepositories(db), nil
}
