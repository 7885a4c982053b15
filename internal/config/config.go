package config

import (
	"github.com/spf13/viper"
)

// Config 进程级配置
// 全部来自环境变量，带默认值；业务常量（抽取上限、过期天数、分享码字母表、
// 未中奖项名称）显式列出，构造各组件时传入，不做隐式全局。
type Config struct {
	ServerPort   string
	DatabaseDSN  string
	ShareBaseURL string // 分享链接前缀，前端落地页

	MaxDraws        int    // 每个 (抽取者, 店主) 的抽取上限
	ShareExpiryDays int    // 分享码有效天数
	CodeAlphabet    string // 分享码字符集，去掉了易混淆字符
	ThanksItemName  string // 保留的"未中奖"物品名
}

// Load 从环境变量加载配置
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_DSN", "host=localhost user=shop_admin password=1234 dbname=christmas_shop port=5432 sslmode=disable")
	v.SetDefault("SHARE_BASE_URL", "https://shop.example.com/shop.html")
	v.SetDefault("MAX_DRAWS", 3)
	v.SetDefault("SHARE_EXPIRY_DAYS", 7)
	v.SetDefault("SHARE_CODE_ALPHABET", "ABCDEFGHJKMNPQRSTUVWXYZ23456789")
	v.SetDefault("THANKS_ITEM_NAME", "谢谢惠顾")

	return &Config{
		ServerPort:      v.GetString("SERVER_PORT"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		ShareBaseURL:    v.GetString("SHARE_BASE_URL"),
		MaxDraws:        v.GetInt("MAX_DRAWS"),
		ShareExpiryDays: v.GetInt("SHARE_EXPIRY_DAYS"),
		CodeAlphabet:    v.GetString("SHARE_CODE_ALPHABET"),
		ThanksItemName:  v.GetString("THANKS_ITEM_NAME"),
	}
}

// Default 业务常量的默认配置，测试用
func Default() *Config {
	return &Config{
		ServerPort:      "8080",
		ShareBaseURL:    "https://shop.example.com/shop.html",
		MaxDraws:        3,
		ShareExpiryDays: 7,
		CodeAlphabet:    "ABCDEFGHJKMNPQRSTUVWXYZ23456789",
		ThanksItemName:  "谢谢惠顾",
	}
}
