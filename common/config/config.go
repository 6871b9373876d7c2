package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
	"github.com/rs/zerolog/log"
)

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func loadEnvString(key string, result *string) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	*result = s
}

func loadEnvUint(key string, result *uint) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		log.Warn().Str("key", key).Str("value", s).Msg("Ignoring invalid unsigned integer")
		return
	}
	*result = uint(n)
}

func loadEnvInt64(key string, result *int64) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", s).Msg("Ignoring invalid integer")
		return
	}
	*result = n
}

func loadEnvBool(key string, result *bool) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Warn().Str("key", key).Str("value", s).Msg("Ignoring invalid boolean")
		return
	}
	*result = b
}

func loadEnvDuration(key string, result *time.Duration) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn().Str("key", key).Str("value", s).Msg("Ignoring invalid duration")
		return
	}
	*result = d
}

func loadEnvList(key string, result *[]string) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*result = items
}

/* Configuration */

/* Listen Configuration */

type listenConfig struct {
	Host string `json:"host"`
	Port uint   `json:"port"`
}

func (l listenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

func defaultListenConfig() listenConfig {
	return listenConfig{
		Host: "127.0.0.1",
		Port: 8080,
	}
}

func (l *listenConfig) loadFromEnv() {
	loadEnvString("LISTEN_HOST", &l.Host)
	loadEnvUint("LISTEN_PORT", &l.Port)
}

/* DynamoDB Configuration */

type DynamoDBConfig struct {
	Endpoint          string        `json:"endpoint"`
	Region            string        `json:"region"`
	AccessKeyID       string        `json:"-"`
	SecretAccessKey   string        `json:"-"`
	Table             string        `json:"table"`
	ReadCapacity      int64         `json:"read_capacity"`
	WriteCapacity     int64         `json:"write_capacity"`
	AutoCreateTable   bool          `json:"auto_create_table"`
	ConditionalWrites bool          `json:"conditional_writes"`
	MaxAttempts       uint          `json:"max_attempts"`
	ScanPageSize      uint          `json:"scan_page_size"`
	TableWait         time.Duration `json:"table_wait"`
}

func defaultDynamoDBConfig() DynamoDBConfig {
	return DynamoDBConfig{
		Endpoint:          "http://localhost:8000",
		Region:            "us-east-1",
		Table:             common.DefaultTableName,
		ReadCapacity:      1,
		WriteCapacity:     1,
		AutoCreateTable:   true,
		ConditionalWrites: true,
		MaxAttempts:       3,
		ScanPageSize:      0,
		TableWait:         2 * time.Minute,
	}
}

func (d *DynamoDBConfig) loadFromEnv() {
	loadEnvString("DYNAMODB_ENDPOINT", &d.Endpoint)
	loadEnvString("DYNAMODB_REGION", &d.Region)
	loadEnvString("DYNAMODB_ACCESS_KEY_ID", &d.AccessKeyID)
	loadEnvString("DYNAMODB_SECRET_ACCESS_KEY", &d.SecretAccessKey)
	loadEnvString("DYNAMODB_TABLE", &d.Table)
	loadEnvInt64("DYNAMODB_READ_CAPACITY", &d.ReadCapacity)
	loadEnvInt64("DYNAMODB_WRITE_CAPACITY", &d.WriteCapacity)
	loadEnvBool("DYNAMODB_AUTO_CREATE_TABLE", &d.AutoCreateTable)
	loadEnvBool("DYNAMODB_CONDITIONAL_WRITES", &d.ConditionalWrites)
	loadEnvUint("DYNAMODB_MAX_ATTEMPTS", &d.MaxAttempts)
	loadEnvUint("DYNAMODB_SCAN_PAGE_SIZE", &d.ScanPageSize)
	loadEnvDuration("DYNAMODB_TABLE_WAIT", &d.TableWait)
}

// Validate checks the settings the DynamoDB client cannot start without
func (d DynamoDBConfig) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("%w: DYNAMODB_TABLE must not be empty", common.ErrInvalidConfig)
	}
	if d.Region == "" {
		return fmt.Errorf("%w: DYNAMODB_REGION must not be empty", common.ErrInvalidConfig)
	}
	if d.ReadCapacity < 1 || d.WriteCapacity < 1 {
		return fmt.Errorf("%w: DynamoDB read/write capacity must be at least 1", common.ErrInvalidConfig)
	}
	if d.MaxAttempts < 1 {
		return fmt.Errorf("%w: DYNAMODB_MAX_ATTEMPTS must be at least 1", common.ErrInvalidConfig)
	}
	if d.ScanPageSize > math.MaxInt32 {
		return fmt.Errorf("%w: DYNAMODB_SCAN_PAGE_SIZE must be at most %d", common.ErrInvalidConfig, math.MaxInt32)
	}
	return nil
}

/* NATS Configuration */

type natsConfig struct {
	Enabled          bool
	Host             string
	Port             uint
	Username         string
	Password         string
	JetStreamEnabled bool
	SubjectPrefix    string
}

func (c *natsConfig) loadFromEnv() {
	loadEnvBool("NATS_ENABLED", &c.Enabled)
	c.Host = getEnv("NATS_HOST", c.Host)
	loadEnvUint("NATS_PORT", &c.Port)
	c.Username = getEnv("NATS_USER", "")
	c.Password = getEnv("NATS_PASSWORD", "")
	loadEnvBool("NATS_JETSTREAM_ENABLED", &c.JetStreamEnabled)
	loadEnvString("NATS_SUBJECT_PREFIX", &c.SubjectPrefix)
}

func (c *natsConfig) URL() string {
	return fmt.Sprintf("nats://%s:%d", c.Host, c.Port)
}

func defaultNatsConfig() natsConfig {
	return natsConfig{
		Enabled:          false,
		Host:             "localhost",
		Port:             4222,
		Username:         "",
		Password:         "",
		JetStreamEnabled: true,
		SubjectPrefix:    constants.RegistrationSubjectPrefix,
	}
}

/* CORS Configuration */

type corsConfig struct {
	AllowedOrigins []string
}

func (c *corsConfig) loadFromEnv() {
	loadEnvList("CORS_ALLOWED_ORIGINS", &c.AllowedOrigins)
}

func defaultCorsConfig() corsConfig {
	return corsConfig{
		AllowedOrigins: []string{"*"},
	}
}

/* Log Configuration */

type logConfig struct {
	Level  string
	Pretty bool
}

func (l *logConfig) loadFromEnv() {
	loadEnvString("LOG_LEVEL", &l.Level)
	loadEnvBool("LOG_PRETTY", &l.Pretty)
}

func defaultLogConfig() logConfig {
	return logConfig{
		Level:  "info",
		Pretty: false,
	}
}

type Config struct {
	Listen   listenConfig
	DynamoDB DynamoDBConfig
	Nats     natsConfig
	Cors     corsConfig
	Log      logConfig
}

func (c *Config) LoadFromEnv() {
	c.Listen.loadFromEnv()
	c.DynamoDB.loadFromEnv()
	c.Nats.loadFromEnv()
	c.Cors.loadFromEnv()
	c.Log.loadFromEnv()
}

func DefaultConfig() Config {
	return Config{
		Listen:   defaultListenConfig(),
		DynamoDB: defaultDynamoDBConfig(),
		Nats:     defaultNatsConfig(),
		Cors:     defaultCorsConfig(),
		Log:      defaultLogConfig(),
	}
}
