package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	PostgresURI  string
	RedisURI     string
	CronSecret   string
	SecretKey    string
	CronInterval string
	InternalCron bool
	R2           R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:  getEnv("POSTGRES_URI", ""),
		RedisURI:     getEnv("REDIS_URI", ""),
		CronSecret:   getEnv("CRON_SECRET", ""),
		SecretKey:    getEnv("SECRET_KEY", ""),
		CronInterval: getEnv("CRON_INTERVAL", "@every 00h05m00s"),
		InternalCron: getEnv("INTERNAL_CRON", "true") != "false",
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
