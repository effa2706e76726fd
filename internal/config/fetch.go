package config

import (
	"os"
	"time"
)

type FetchConfig struct {
	Timeout time.Duration
	// Token is sent as a bearer credential when fetching over http
	Token string
}

func NewFetchConfig() *FetchConfig {
	return &FetchConfig{
		Timeout: getSecondsEnv("FETCH_TIMEOUT_SEC", 30),
		Token:   os.Getenv("FETCH_TOKEN"),
	}
}

type HttpConfig struct {
	Port        int
	ServiceName string
}

func NewHttpConfig() *HttpConfig {
	return &HttpConfig{
		Port:        getIntEnv("HTTP_PORT", 8082),
		ServiceName: getEnv("SERVICE_NAME", "testsys2pcms"),
	}
}
