package data

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/constants"
	"scenic-order-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// ticketRepo 门票目录数据访问
type ticketRepo struct {
	data *Data
	log  *log.Helper
}

// NewTicketRepo 创建门票 repo（返回 biz.TicketRepo 接口）
func NewTicketRepo(data *Data, logger log.Logger) biz.TicketRepo {
	return &ticketRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetTicket 按ID查询门票（经过缓存，库存变动时缓存被失效）
func (r *ticketRepo) GetTicket(ctx context.Context, ticketID uint64) (*biz.Ticket, error) {
	key := constants.RedisKeyTicketDetail + strconv.FormatUint(ticketID, 10)
	if raw, err := r.data.rdb.Get(ctx, key).Result(); err == nil {
		var cached biz.Ticket
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	var m model.Ticket
	if err := r.data.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ticket := &biz.Ticket{
		ID:           m.TicketID,
		ScenicSpotID: m.ScenicSpotID,
		Name:         m.TicketName,
		Price:        m.Price,
		Status:       m.Status,
		SoldCount:    m.SoldCount,
	}

	// 回填缓存（异步，不阻塞）
	if data, err := json.Marshal(ticket); err == nil {
		go func() {
			cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cacheCancel()
			_ = r.data.rdb.Set(cacheCtx, key, data, 5*time.Minute).Err()
		}()
	}

	return ticket, nil
}

// ticketCacheKeys 门票派生缓存 key：按ID详情 + 所属景区的门票列表
func ticketCacheKeys(ctx context.Context, data *Data, ticketID uint64) []string {
	keys := []string{constants.RedisKeyTicketDetail + strconv.FormatUint(ticketID, 10)}

	var m model.Ticket
	if err := data.db.WithContext(ctx).Select("scenic_spot_id").
		Where("ticket_id = ?", ticketID).First(&m).Error; err == nil {
		keys = append(keys, constants.RedisKeyTicketSpotList+strconv.FormatUint(m.ScenicSpotID, 10))
	}
	return keys
}
