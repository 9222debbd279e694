package storage

import "os"

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal  DynamoMode = "local"
	DynamoModeAWS    DynamoMode = "aws"
	DynamoModeMemory DynamoMode = "memory"
)

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Mode             DynamoMode
	Endpoint         string // for local mode
	Region           string
	CallRecordsTable string
	LeadsTable       string
	TasksTable       string
	CallbacksTable   string
}

// LoadDynamoConfig loads DynamoDB config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := DynamoMode(getEnv("DYNAMO_MODE", "memory"))
	if mode != DynamoModeLocal && mode != DynamoModeAWS {
		mode = DynamoModeMemory
	}

	return DynamoConfig{
		Mode:             mode,
		Endpoint:         getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:           getEnv("DYNAMO_REGION", "ap-south-1"),
		CallRecordsTable: getEnv("DYNAMO_CALL_RECORDS_TABLE", "eduvoice-call-records"),
		LeadsTable:       getEnv("DYNAMO_LEADS_TABLE", "eduvoice-leads"),
		TasksTable:       getEnv("DYNAMO_TASKS_TABLE", "eduvoice-deferred-tasks"),
		CallbacksTable:   getEnv("DYNAMO_CALLBACKS_TABLE", "eduvoice-callbacks"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
