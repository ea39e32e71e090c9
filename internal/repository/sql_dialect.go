package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// dbDialectName 未知方言按 sqlite 处理
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	if name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name != "" {
		return name
	}
	return "sqlite"
}

// likeOperatorByDialect postgres 的 LIKE 区分大小写，改用 ILIKE
func likeOperatorByDialect(dialect string) string {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	if dialect == "postgres" || dialect == "postgresql" {
		return "ILIKE"
	}
	return "LIKE"
}

// containsFold 模糊匹配 column，忽略大小写
func containsFold(db *gorm.DB, column, needle string) func(*gorm.DB) *gorm.DB {
	op := likeOperatorByDialect(dbDialectName(db))
	return func(query *gorm.DB) *gorm.DB {
		return query.Where(column+" "+op+" ?", "%"+needle+"%")
	}
}

// IsUniqueViolation 判断是否唯一约束冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, pgUniqueViolation)
}
