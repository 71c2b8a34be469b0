// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
)

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
	MaxPayload        int32
}

// ServerConfigFrom derives embedded server settings from the application
// NATS configuration.
func ServerConfigFrom(cfg *config.NATSConfig, maxPayload int64) ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          cfg.StoreDir,
		JetStreamMaxMem:   cfg.MaxMemory,
		JetStreamMaxStore: cfg.MaxStore,
		MaxPayload:        int32(maxPayload),
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1, // unlimited
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig holds subscriber configuration.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds the subscriber to a pre-created stream. Required for
	// wildcard topics because stream names cannot contain wildcards.
	StreamName string
}

// SubscriberConfigFrom derives subscriber settings from the application
// NATS configuration.
func SubscriberConfigFrom(cfg *config.NATSConfig) SubscriberConfig {
	return SubscriberConfig{
		URL:              cfg.URL,
		DurableName:      cfg.DurableName,
		QueueGroup:       cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       StreamName,
	}
}

// StreamName is the JetStream stream holding raw ping events.
const StreamName = "TELEMETRY_PINGS"

// StreamConfig defines ping stream settings.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// StreamConfigFrom derives stream settings from the application NATS
// configuration. Retention tracks the submission window so a recompute can
// replay every ping that could still land in an open week.
func StreamConfigFrom(cfg *config.NATSConfig) StreamConfig {
	return StreamConfig{
		Name:            StreamName,
		Subjects:        []string{"telemetry.>"},
		MaxAge:          time.Duration(cfg.StreamRetentionDays) * 24 * time.Hour,
		MaxBytes:        cfg.MaxStore,
		MaxMsgs:         -1, // unlimited
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// AppenderConfig holds batch appender configuration.
type AppenderConfig struct {
	BatchSize          int
	FlushInterval      time.Duration
	QueueCapacity      int
	RateLimitPerSecond float64
}

// AppenderConfigFrom derives appender settings from the application ingest
// configuration.
func AppenderConfigFrom(cfg *config.IngestConfig) AppenderConfig {
	return AppenderConfig{
		BatchSize:          cfg.BatchSize,
		FlushInterval:      cfg.FlushInterval,
		QueueCapacity:      cfg.BatchSize * 4,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // allowed in half-open state
	Interval         time.Duration // reset interval for counts
	Timeout          time.Duration // time to stay open
	FailureThreshold uint32        // consecutive failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}
