package config

import "os"

type AppConfig struct {
	DebugMode      bool
	LogLevel       string
	ScheduleSvcCfg *ScheduleSvcCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
	FetchConfig    *FetchConfig
	HttpConfig     *HttpConfig
	ContestConfig  *ContestConfig
}

func NewSystemConfig() *AppConfig {
	debug := os.Getenv("DEBUG_MODE") == "true"
	level := getEnv("LOG_LEVEL", "info")
	if debug {
		level = "debug"
	}
	return &AppConfig{
		DebugMode:      debug,
		LogLevel:       level,
		ScheduleSvcCfg: NewScheduleSvcCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
		FetchConfig:    NewFetchConfig(),
		HttpConfig:     NewHttpConfig(),
		ContestConfig:  NewContestConfig(),
	}
}
