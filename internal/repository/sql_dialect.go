package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const likeEscapeChar = "!"

var likeEscaper = strings.NewReplacer(likeEscapeChar, likeEscapeChar+likeEscapeChar, "%", likeEscapeChar+"%", "_", likeEscapeChar+"_")

// dialectOf 当前连接的方言名称，未知时按 sqlite 处理
func dialectOf(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	if name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name != "" {
		return name
	}
	return "sqlite"
}

// likeOperatorFor postgres 区分大小写，需要 ILIKE；sqlite 与 mysql 的 LIKE 默认不区分
func likeOperatorFor(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// containsCondition 构建多列"包含关键字"条件，关键字中的通配符按字面匹配
func containsCondition(dialect, keyword string, columns ...string) (string, []interface{}) {
	operator := likeOperatorFor(dialect)
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ? ESCAPE '%s'", column, operator, likeEscapeChar))
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "1 = 1", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// whereContains 在查询上追加关键字包含条件
func whereContains(query *gorm.DB, keyword string, columns ...string) *gorm.DB {
	condition, args := containsCondition(dialectOf(query), keyword, columns...)
	return query.Where(condition, args...)
}
