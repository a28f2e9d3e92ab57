package repository

import "gorm.io/gorm"

const maxPageSize = 200

// paginate 统计总数后按页取数，默认按创建时间倒序
func paginate[T any](query *gorm.DB, page, pageSize int, orders ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		orders = []string{"created_at DESC", "id DESC"}
	}
	for _, order := range orders {
		query = query.Order(order)
	}
	var items []T
	if err := applyPagination(query, page, pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// applyPagination 非法页码按第一页处理，单页条数有上限
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
