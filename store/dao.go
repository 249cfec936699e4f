package store

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Dao struct {
	db *gorm.DB
}

func DSN(url, scheme, user, passwd string) string {
	return user + ":" + passwd + "@tcp(" + url + ")/" + scheme + "?charset=utf8"
}

func NewDao(url, scheme, user, passwd string) (*Dao, error) {
	Logger := logger.Default
	Logger = Logger.LogMode(logger.Warn)
	db, err := gorm.Open(mysql.Open(DSN(url, scheme, user, passwd)), &gorm.Config{Logger: Logger})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return NewDaoWithDB(db), nil
}

func NewDaoWithDB(db *gorm.DB) *Dao {
	return &Dao{db: db}
}

func (dao *Dao) Migrate() error {
	return dao.db.AutoMigrate(&SwapRecord{})
}

func (dao *Dao) SaveSwap(ctx context.Context, record *SwapRecord) error {
	return dao.db.WithContext(ctx).Create(record).Error
}

func (dao *Dao) SelectSwaps(ctx context.Context, q SwapQuery) ([]*SwapRecord, error) {
	records := make([]*SwapRecord, 0)
	res := dao.querySwaps(ctx, q, &records)
	return records, res.Error
}

func (dao *Dao) querySwaps(ctx context.Context, q SwapQuery, records *[]*SwapRecord) *gorm.DB {
	tx := dao.db.WithContext(ctx)
	if q.Pool != "" {
		tx = tx.Where("pool = ?", q.Pool)
	}
	if q.User != "" {
		tx = tx.Where("user = ?", q.User)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return tx.Order("id desc").Limit(limit).Find(records)
}
