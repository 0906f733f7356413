package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// Scenic Order Service 错误码定义
// 错误码格式：SSMMEE (6位数字)
//   SS: 服务标识，Order 固定为 20
//   MM: 模块标识，按业务划分
//   EE: 模块内错误序号
//
// 模块划分：
//   00: 通用模块（复用 go-pkg 通用错误码）
//   01: 订单模块
//   02: 门票/库存模块
//   03: 扫描任务模块
//   04-06: 预留扩展
//   07: 通用数据访问

// 订单模块错误码 (200100-200199)
const (
	// ErrCodeOrderNotFound 订单不存在
	ErrCodeOrderNotFound = 200101
	// ErrCodeOrderCreateFailed 订单创建失败
	ErrCodeOrderCreateFailed = 200102
	// ErrCodeOrderAlreadyPaid 订单已支付
	ErrCodeOrderAlreadyPaid = 200103
	// ErrCodeOrderAlreadyCancelled 订单已取消
	ErrCodeOrderAlreadyCancelled = 200104
	// ErrCodeOrderExpired 订单已超时
	ErrCodeOrderExpired = 200105
	// ErrCodeOrderNotPaid 订单未支付（仅已支付订单可取消）
	ErrCodeOrderNotPaid = 200106
	// ErrCodeOrderNotOwner 非订单所有者
	ErrCodeOrderNotOwner = 200107
	// ErrCodeOrderCancelCutoff 已过取消时限
	ErrCodeOrderCancelCutoff = 200108
	// ErrCodeOrderStatusInvalid 订单状态非法
	ErrCodeOrderStatusInvalid = 200109
	// ErrCodeOrderTypeInvalid 订单类型非法
	ErrCodeOrderTypeInvalid = 200110
	// ErrCodeOrderItemsInvalid 订单明细非法
	ErrCodeOrderItemsInvalid = 200111
	// ErrCodeOrderVisitDateInvalid 游玩日期非法
	ErrCodeOrderVisitDateInvalid = 200112
	// ErrCodeParamInvalid 请求参数非法
	ErrCodeParamInvalid = 200113
)

// 门票/库存模块错误码 (200200-200299)
const (
	// ErrCodeTicketNotFound 门票不存在
	ErrCodeTicketNotFound = 200201
	// ErrCodeTicketDisabled 门票已下架
	ErrCodeTicketDisabled = 200202
	// ErrCodeTicketPriceMismatch 门票价格不一致
	ErrCodeTicketPriceMismatch = 200203
	// ErrCodeInventoryAdjustFailed 库存调整失败
	ErrCodeInventoryAdjustFailed = 200204
)

// 扫描任务模块错误码 (200300-200399)
const (
	// ErrCodeSweepLockBusy 扫描任务锁被占用
	ErrCodeSweepLockBusy = 200301
	// ErrCodeSweepFailed 扫描任务执行失败
	ErrCodeSweepFailed = 200302
)

// 通用数据访问错误码 (200700-200799)
const (
	// ErrCodeOrderGetFailed 获取订单失败
	ErrCodeOrderGetFailed = 200701
	// ErrCodeOrderUpdateFailed 更新订单失败
	ErrCodeOrderUpdateFailed = 200702
	// ErrCodeOrderListFailed 查询订单列表失败
	ErrCodeOrderListFailed = 200703
	// ErrCodeOrderCountFailed 统计订单失败
	ErrCodeOrderCountFailed = 200704
	// ErrCodeTicketGetFailed 获取门票失败
	ErrCodeTicketGetFailed = 200705
)
