package config

import "time"

type RedisConfig struct {
	DB       int
	Url      string
	Password string
	// PayloadTTL bounds how long a fetched export is served from cache
	PayloadTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:         getIntEnv("REDIS_DB", 0),
		Url:        getEnv("REDIS_ADDR", ""),
		Password:   getEnv("REDIS_PASSWORD", ""),
		PayloadTTL: getSecondsEnv("PAYLOAD_CACHE_TTL_SEC", 10),
	}
}

func (c *RedisConfig) Enabled() bool {
	return c.Url != "" && c.PayloadTTL > 0
}
