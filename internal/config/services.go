package config

import "time"

type ScheduleSvcCfg struct {
	ConvertInterval time.Duration
}

func NewScheduleSvcCfg() *ScheduleSvcCfg {
	interval := getIntEnv("SCHEDULE_CONVERT_INTERVAL_SEC", 60)
	if interval <= 0 {
		interval = 60
	}
	return &ScheduleSvcCfg{
		ConvertInterval: time.Duration(interval) * time.Second,
	}
}
