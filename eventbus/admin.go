package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const createTopicsTimeout = 30 * time.Second

// EnsureTopics 는 기본 토픽, 재시도 토픽, DLQ 토픽을 생성한다.
// 이미 존재하는 토픽은 성공으로 간주한다. 복제 수는 KAFKA_REPLICATION_FACTOR (기본 1).
func EnsureTopics(ctx context.Context, brokers string, topic Topic, basePartitions int) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(ctx, createTopicsTimeout)
	defer cancel()

	replication := max(envPositiveInt("KAFKA_REPLICATION_FACTOR"), 1)
	results, err := admin.CreateTopics(ctx, topicSpecs(topic, basePartitions, replication))
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, r := range results {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("create topic %s: %v", r.Topic, r.Error)
		}
	}
	return nil
}

// topicSpecs 는 base, retry.N, dlq 순서로 토픽 명세를 만든다. DLQ 만 1 파티션이다.
func topicSpecs(topic Topic, partitions, replication int) []kafka.TopicSpecification {
	partitions = max(partitions, 1)
	spec := func(name string, n int) kafka.TopicSpecification {
		return kafka.TopicSpecification{Topic: name, NumPartitions: n, ReplicationFactor: replication}
	}

	out := []kafka.TopicSpecification{spec(topic.Base(), partitions)}
	for _, name := range topic.GetRetryTopics() {
		out = append(out, spec(name, partitions))
	}
	return append(out, spec(topic.DLQ(), 1))
}
