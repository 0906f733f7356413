package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server *Server `yaml:"server" json:"server"`
	Data   *Data   `yaml:"data" json:"data"`
	Order  *Order  `yaml:"order" json:"order"`
	Log    *Log    `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver string `yaml:"driver" json:"driver"`
		Source string `yaml:"source" json:"source"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"redis" json:"redis"`
	Rocketmq *Rocketmq `yaml:"rocketmq" json:"rocketmq"`
}

// Rocketmq 通知分发 MQ 配置（未配置或 enabled=false 时通知降级为空操作）
type Rocketmq struct {
	Enabled     bool     `yaml:"enabled" json:"enabled"`
	NameServers []string `yaml:"name_servers" json:"name_servers"`
	GroupName   string   `yaml:"group_name" json:"group_name"`
	Topic       string   `yaml:"topic" json:"topic"`
	RetryTimes  int32    `yaml:"retry_times" json:"retry_times"`
}

// Order 订单业务配置
type Order struct {
	ExpireMinutes  int    `yaml:"expire_minutes" json:"expire_minutes"`
	CancelLeadDays int    `yaml:"cancel_lead_days" json:"cancel_lead_days"`
	SweepBatchSize int    `yaml:"sweep_batch_size" json:"sweep_batch_size"`
	DetailCacheTtl string `yaml:"detail_cache_ttl" json:"detail_cache_ttl"`
}

type Log struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePath   string `yaml:"file_path" json:"file_path"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Data.Redis.Addr == "" {
		return fmt.Errorf("data.redis.addr is required")
	}
	if b.Data.Rocketmq != nil && b.Data.Rocketmq.Enabled {
		if len(b.Data.Rocketmq.NameServers) == 0 {
			return fmt.Errorf("data.rocketmq.name_servers is required when rocketmq is enabled")
		}
		if b.Data.Rocketmq.Topic == "" {
			return fmt.Errorf("data.rocketmq.topic is required when rocketmq is enabled")
		}
	}
	return nil
}
