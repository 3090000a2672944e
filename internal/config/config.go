// Package config loads the settings shared by the lending gateway and the lending
// worker: HTTP server, PostgreSQL, MongoDB, Kafka, outbox, and the lending rules.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the full configuration of one binary. Every section is validated at
// startup and all violations are reported together.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Lending     LendingConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig holds the HTTP listener settings of the gateway
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration // grace period for in-flight requests
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// KafkaConfig describes the lending event topic, its dead letter topic and the
// consumer group of the history projection.
type KafkaConfig struct {
	Brokers           string
	EventTopic        string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig points at the lending history store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // publish attempts before a message is parked as failed
}

// WorkerPoolConfig sizes the pool that re-evaluates member suspensions after a sweep
type WorkerPoolConfig struct {
	Size int
}

// LendingConfig holds the lending rules and the sweeper cadence.
type LendingConfig struct {
	LoanPeriod            time.Duration   // due_at = borrowed_at + LoanPeriod
	BorrowLimit           int             // maximum non-returned transactions per member
	FinePerDay            decimal.Decimal // charged per overdue calendar day
	SweepInterval         time.Duration
	ConflictRetryAttempts int // total attempts for an operation that lost a constraint race
}

// problems collects validation failures across all sections.
type problems []string

func (p *problems) positive(key string, ok bool) {
	if !ok {
		*p = append(*p, key+" must be greater than 0")
	}
}

func (p *problems) required(key, value string) {
	if strings.TrimSpace(value) == "" {
		*p = append(*p, key+" is required")
	}
}

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (s ServerConfig) check(p *problems) {
	p.positive("SERVER_PORT", s.Port > 0)
	p.positive("SERVER_SHUTDOWN_TIMEOUT", s.ShutdownTimeout > 0)
	p.positive("SERVER_READ_TIMEOUT", s.ReadTimeout > 0)
	p.positive("SERVER_WRITE_TIMEOUT", s.WriteTimeout > 0)
	p.positive("SERVER_IDLE_TIMEOUT", s.IdleTimeout > 0)
}

func (k KafkaConfig) check(p *problems) {
	p.required("KAFKA_BROKERS", k.Brokers)
	p.required("KAFKA_EVENT_TOPIC", k.EventTopic)
	p.required("KAFKA_CONSUMER_GROUP", k.ConsumerGroup)
	p.required("KAFKA_DLQ_TOPIC", k.DLQTopic)
	p.positive("KAFKA_CONSUMER_MIN_BYTES", k.MinBytes > 0)
	p.positive("KAFKA_CONSUMER_MAX_BYTES", k.MaxBytes > 0)
	p.positive("KAFKA_CONSUMER_MAX_WAIT", k.MaxWait > 0)
	if k.EventTopic != "" && k.EventTopic == k.DLQTopic {
		p.addf("KAFKA_DLQ_TOPIC must differ from KAFKA_EVENT_TOPIC (%s)", k.EventTopic)
	}
}

func (pg PostgresConfig) check(p *problems) {
	p.required("POSTGRES_URL", pg.URL)
	p.positive("POSTGRES_MAX_CONNS", pg.MaxConns > 0)
	p.positive("POSTGRES_MIN_CONNS", pg.MinConns > 0)
	p.positive("POSTGRES_MAX_CONN_LIFETIME", pg.ConnMaxLifetime > 0)
	p.positive("POSTGRES_MAX_CONN_IDLE_TIME", pg.ConnMaxIdleTime > 0)
	if pg.MinConns > pg.MaxConns {
		p.addf("POSTGRES_MIN_CONNS (%d) cannot exceed POSTGRES_MAX_CONNS (%d)", pg.MinConns, pg.MaxConns)
	}
}

func (m MongoDBConfig) check(p *problems) {
	p.required("MONGO_URI", m.URI)
	p.required("MONGO_DATABASE", m.Database)
	p.positive("MONGO_TIMEOUT", m.Timeout > 0)
	p.positive("MONGO_MAX_POOL_SIZE", m.MaxPoolSize > 0)
	p.positive("MONGO_MAX_CONN_IDLE_TIME", m.MaxConnIdleTime > 0)
}

func (o OutboxConfig) check(p *problems) {
	p.positive("OUTBOX_POLLING_INTERVAL", o.PollingInterval > 0)
	p.positive("OUTBOX_BATCH_SIZE", o.BatchSize > 0)
	p.positive("OUTBOX_MAX_RETRY_ATTEMPTS", o.MaxRetryAttempts > 0)
}

func (l LendingConfig) check(p *problems) {
	if l.LoanPeriod < 24*time.Hour {
		p.addf("LENDING_LOAN_PERIOD must be at least one day")
	}
	p.positive("LENDING_BORROW_LIMIT", l.BorrowLimit > 0)
	if !l.FinePerDay.IsPositive() {
		p.addf("LENDING_FINE_PER_DAY must be a positive amount")
	}
	p.positive("LENDING_SWEEP_INTERVAL", l.SweepInterval > 0)
	p.positive("LENDING_CONFLICT_RETRY_ATTEMPTS", l.ConflictRetryAttempts > 0)
}

func (c *Config) validate() error {
	var p problems
	c.Server.check(&p)
	c.Kafka.check(&p)
	c.Postgres.check(&p)
	c.MongoDB.check(&p)
	c.Outbox.check(&p)
	p.positive("WORKER_POOL_SIZE", c.WorkerPool.Size > 0)
	c.Lending.check(&p)

	if len(p) > 0 {
		return errors.New(strings.Join(p, ", "))
	}
	return nil
}
