package biz

import (
	"context"

	"scenic-order-service/internal/constants"

	orderErrors "scenic-order-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
)

// GetOrderDetail 获取订单详情（含明细）
// 读路径走详情缓存，未命中退化为库读；写路径只失效缓存，不会回填。
func (uc *OrderUseCase) GetOrderDetail(ctx context.Context, orderNo string) (*Order, error) {
	order, err := uc.repo.GetOrderDetail(ctx, orderNo)
	if err != nil {
		uc.log.Errorf("GetOrderDetail failed: order_no=%s, error=%v", orderNo, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderGetFailed)
	}
	if order == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotFound)
	}
	return order, nil
}

// ListOrders 分页查询用户订单
func (uc *OrderUseCase) ListOrders(ctx context.Context, query *OrderListQuery) ([]*Order, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = constants.DefaultPageSize
	}
	if query.PageSize > constants.MaxPageSize {
		query.PageSize = constants.MaxPageSize
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, 0, pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderStatusInvalid)
	}
	if query.OrderType != "" && !query.OrderType.Valid() {
		return nil, 0, pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderTypeInvalid)
	}

	orders, total, err := uc.repo.ListOrders(ctx, query)
	if err != nil {
		uc.log.Errorf("ListOrders failed: user_id=%d, error=%v", query.UserID, err)
		return nil, 0, pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderListFailed)
	}
	return orders, total, nil
}

// CountOrdersByStatus 按状态统计用户订单数（五个状态全部返回，零值填充）
func (uc *OrderUseCase) CountOrdersByStatus(ctx context.Context, userID uint64) (map[OrderStatus]int64, error) {
	counts, err := uc.repo.CountByStatus(ctx, userID)
	if err != nil {
		uc.log.Errorf("CountByStatus failed: user_id=%d, error=%v", userID, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderCountFailed)
	}

	result := make(map[OrderStatus]int64, 5)
	for _, s := range AllOrderStatuses() {
		result[s] = counts[s]
	}
	return result, nil
}
