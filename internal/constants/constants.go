package constants

// 时间格式常量
const (
	// TimeFormatDate 日期格式 (YYYY-MM-DD)
	TimeFormatDate = "2006-01-02"
	// TimeFormatDateTime 日期时间格式
	TimeFormatDateTime = "2006-01-02 15:04:05"
)

// Redis Key 前缀常量
const (
	// RedisKeyOrderDetail 订单详情缓存 key 前缀
	RedisKeyOrderDetail = "order:detail:"
	// RedisKeyTicketDetail 门票详情缓存 key 前缀
	RedisKeyTicketDetail = "ticket:detail:"
	// RedisKeyTicketSpotList 景区门票列表缓存 key 前缀
	RedisKeyTicketSpotList = "ticket:spot:"
	// RedisKeySweepExpireLock 超时订单扫描锁 key
	RedisKeySweepExpireLock = "sweep:lock:expire"
	// RedisKeySweepCompleteLock 完成订单扫描锁 key
	RedisKeySweepCompleteLock = "sweep:lock:complete"
)

// 订单状态常量
const (
	// OrderStatusPending 待支付
	OrderStatusPending = "pending"
	// OrderStatusPaid 已支付
	OrderStatusPaid = "paid"
	// OrderStatusCancelled 已取消
	OrderStatusCancelled = "cancelled"
	// OrderStatusRefunded 已退款
	OrderStatusRefunded = "refunded"
	// OrderStatusCompleted 已完成
	OrderStatusCompleted = "completed"
)

// 订单类型常量
const (
	// OrderTypeTicket 门票订单
	OrderTypeTicket = "ticket"
	// OrderTypeAccommodation 住宿订单
	OrderTypeAccommodation = "accommodation"
	// OrderTypeCatering 餐饮订单
	OrderTypeCatering = "catering"
	// OrderTypeGoods 商品订单
	OrderTypeGoods = "goods"
)

// 取消原因常量
const (
	// CancelReasonTimeout 超时未支付自动取消
	CancelReasonTimeout = "timeout"
)

// 订单号前缀常量
const (
	// OrderNoPrefix 订单号前缀
	OrderNoPrefix = "SO"
)

// 门票状态常量
const (
	// TicketStatusEnabled 门票上架
	TicketStatusEnabled = int8(1)
	// TicketStatusDisabled 门票下架
	TicketStatusDisabled = int8(0)
)

// 默认配置常量
const (
	// DefaultOrderExpireMinutes 订单默认支付时限（分钟）
	DefaultOrderExpireMinutes = 30
	// DefaultCancelLeadDays 取消订单默认提前天数
	DefaultCancelLeadDays = 1
	// DefaultSweepBatchSize 扫描任务默认批量大小
	DefaultSweepBatchSize = 200
	// DefaultPageSize 分页默认大小
	DefaultPageSize = 20
	// MaxPageSize 分页最大大小
	MaxPageSize = 100
)

// 订单事件类型常量（通知分发）
const (
	// OrderEventPaid 支付成功事件
	OrderEventPaid = "order.paid"
	// OrderEventRefunded 退款事件（用户取消已支付订单）
	OrderEventRefunded = "order.refunded"
	// OrderEventCompleted 订单完成事件
	OrderEventCompleted = "order.completed"
	// OrderEventExpired 订单超时取消事件
	OrderEventExpired = "order.expired"
)
