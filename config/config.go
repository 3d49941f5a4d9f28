package config

import "time"

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	RedisConfig       RedisStorageConfig
	HttpPort          int
	StorageType       StorageType
	PollInterval      time.Duration
	ScheduleTolerance time.Duration
	CacheTTL          time.Duration
	LogLevel          string
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}
