package database

import (
	"fmt"
	"log"
	"time"

	"fintrack/config"
	"fintrack/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// 连接重试参数：瞬时故障（数据库尚未就绪等）在有限次数内退避重试，用尽后返回错误
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
		if err == nil {
			break
		}
		if attempt < connectAttempts {
			log.Printf("连接数据库失败（第 %d/%d 次）: %v，%v 后重试",
				attempt, connectAttempts, err, connectBackoff)
			time.Sleep(connectBackoff)
		}
	}
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
	); err != nil {
		return err
	}

	// 初始化系统内置类别（仅当表为空时）
	var catCount int64
	DB.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		if err := seedDefaultCategories(); err != nil {
			// 种子数据失败不阻断启动
			log.Printf("警告: 初始化内置类别失败: %v", err)
		}
	}

	log.Println("数据库初始化成功")
	return nil
}

// seedDefaultCategories 写入系统内置收支类别（UserID 为空，所有用户共享）
func seedDefaultCategories() error {
	defaults := []models.Category{
		// 支出类别
		{Name: "Food & Dining", Type: models.TypeExpense, Icon: "🍔"},
		{Name: "Transportation", Type: models.TypeExpense, Icon: "🚗"},
		{Name: "Entertainment", Type: models.TypeExpense, Icon: "🎬"},
		{Name: "Shopping", Type: models.TypeExpense, Icon: "🛍️"},
		{Name: "Bills & Utilities", Type: models.TypeExpense, Icon: "💡"},
		{Name: "Healthcare", Type: models.TypeExpense, Icon: "🏥"},
		{Name: "Education", Type: models.TypeExpense, Icon: "📚"},
		{Name: "Housing", Type: models.TypeExpense, Icon: "🏠"},
		{Name: "Personal Care", Type: models.TypeExpense, Icon: "💇"},
		{Name: "Other Expenses", Type: models.TypeExpense, Icon: "📦"},
		// 收入类别
		{Name: "Salary", Type: models.TypeIncome, Icon: "💰"},
		{Name: "Freelance", Type: models.TypeIncome, Icon: "💼"},
		{Name: "Investment", Type: models.TypeIncome, Icon: "📈"},
		{Name: "Gift", Type: models.TypeIncome, Icon: "🎁"},
		{Name: "Other Income", Type: models.TypeIncome, Icon: "💵"},
	}
	return DB.Create(&defaults).Error
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
