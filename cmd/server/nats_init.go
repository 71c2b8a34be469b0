// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

//go:build nats

package main

import (
	"context"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/supervisor"
)

// NATSComponents holds the NATS transport pieces for lifecycle management.
type NATSComponents struct {
	server            *eventprocessor.EmbeddedServer
	natsConn          *natsgo.Conn
	streamInitializer *eventprocessor.StreamInitializer
	publisher         *eventprocessor.Publisher
	subscriber        *eventprocessor.Subscriber
	consumer          *eventprocessor.PingConsumer
}

// InitNATS initializes the NATS transport when NATS_ENABLED=true: an
// embedded JetStream server (or external connection), the ping stream, a
// publisher with circuit breaker protection, and a durable consumer feeding
// the batch appender.
func InitNATS(cfg *config.Config, appender *eventprocessor.Appender) (*NATSComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS event processing disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	logging.Info().Msg("Initializing NATS event processing")

	components := &NATSComponents{}

	var natsURL string
	if cfg.NATS.EmbeddedServer {
		serverCfg := eventprocessor.ServerConfigFrom(&cfg.NATS, cfg.Ingest.MaxPayloadBytes)
		server, err := eventprocessor.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := eventprocessor.StreamConfigFrom(&cfg.NATS)
	streamInitializer, err := eventprocessor.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}
	components.streamInitializer = streamInitializer

	stream, err := streamInitializer.EnsureStream(context.Background())
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	wmLogger := eventprocessor.NewWatermillLogger()

	publisher, err := eventprocessor.NewPublisher(
		eventprocessor.DefaultPublisherConfig(natsURL), wmLogger)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
		eventprocessor.DefaultCircuitBreakerConfig("nats-publish")))
	components.publisher = publisher

	subCfg := eventprocessor.SubscriberConfigFrom(&cfg.NATS)
	subCfg.URL = natsURL
	subscriber, err := eventprocessor.NewSubscriber(&subCfg, wmLogger)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	components.subscriber = subscriber
	components.consumer = eventprocessor.NewPingConsumer(subscriber, appender)

	logging.Info().Msg("NATS event processing initialized")
	return components, nil
}

// Publisher returns the ping event publisher.
func (c *NATSComponents) Publisher() *eventprocessor.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// Shutdown closes the transport in reverse dependency order.
func (c *NATSComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS subscriber")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS publisher")
		}
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}
}

// AddNATSToSupervisor registers the durable consumer with the ingest layer.
func AddNATSToSupervisor(tree *supervisor.Tree, components *NATSComponents) {
	if components == nil || components.consumer == nil {
		return
	}
	tree.AddIngestService(components.consumer)
	logging.Info().Msg("NATS ping consumer added to supervisor tree")
}
