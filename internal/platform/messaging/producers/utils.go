package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicProbeAttempts = 5
	topicProbeBackoff  = 2 * time.Second
)

// createKafkaTopicIfNotExists probes for the topic's partitions and creates
// the topic when none are visible. Brokers that are still electing a leader
// can fail the probe transiently, so the read is retried before concluding
// the topic is missing.
func createKafkaTopicIfNotExists(conn *kafka.Conn, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var partitions []kafka.Partition
	var probeErr error

	for attempt := 1; attempt <= topicProbeAttempts; attempt++ {
		partitions, probeErr = conn.ReadPartitions(topicName)
		if probeErr == nil {
			break
		}
		log.Warn("Failed to read topic partitions, retrying",
			"topic", topicName, "attempt", attempt, "error", probeErr)
		time.Sleep(topicProbeBackoff)
	}

	if len(partitions) > 0 {
		if probeErr != nil {
			log.Warn("Topic partitions visible despite read error", "topic", topicName, "error", probeErr)
		}
		log.Info("Kafka topic already exists", "topic", topicName)
		return nil
	}

	if numPartitions <= 0 {
		numPartitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	log.Info("Creating Kafka topic",
		"topic", topicName, "partitions", numPartitions, "replication_factor", replicationFactor)
	err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}

	return nil
}
