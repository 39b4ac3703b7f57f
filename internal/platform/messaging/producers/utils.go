package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/natillera-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	topicLookupAttempts = 5
	topicLookupDelay    = 2 * time.Second
)

// ensureTopic creates topicName when no partitions can be read for it
func ensureTopic(admin topicAdmin, topicName string, numPartitions, replicationFactor int, delay time.Duration, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for attempt := 1; attempt <= topicLookupAttempts; attempt++ {
		partitions, err = admin.ReadPartitions(topicName)
		if err == nil {
			break
		}
		log.Warn("Failed to read topic partitions, retrying", "topic", topicName, "attempt", attempt, "error", err)
		time.Sleep(delay)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	if numPartitions <= 0 {
		numPartitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	log.Info("Creating Kafka topic", "topic", topicName, "partitions", numPartitions, "replication_factor", replicationFactor)
	if err := admin.CreateTopics(kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	return nil
}

// provisionTopic dials the broker and ensures topicName exists
func provisionTopic(cfg *config.KafkaConfig, topicName string, log *slog.Logger) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	return ensureTopic(conn, topicName, cfg.NumPartitions, cfg.ReplicationFactor, topicLookupDelay, log)
}
