package config

import (
	"fmt"
	"os"
)

type DynamoConfig struct {
	TableName  string
	TtlMinutes int
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("JOBS_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("JOBS_TABLE_NAME must be set")
	}

	ttlMinutes, err := intFromEnv("JOBS_TTL_MINUTES", 1440)
	if err != nil {
		return nil, err
	}

	return &DynamoConfig{
		TableName:  tableName,
		TtlMinutes: ttlMinutes,
	}, nil
}
