package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"poemas-versos/config"
)

// KafkaEventBus 는 confluent-kafka-go 기반 EventBus 구현체다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	producerCfg := &kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	}
	if maxBytes := envPositiveInt("KAFKA_MESSAGE_MAX_BYTES"); maxBytes > 0 {
		(*producerCfg)["message.max.bytes"] = maxBytes
	}

	p, err := kafka.NewProducer(producerCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// 전달 보고서 / 클라이언트 오류 로깅
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.Logger.Errorf("[eventbus] delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				config.Logger.Errorf("[eventbus] kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{Producer: p, Brokers: brokers}, nil
}

// Close 는 남은 메시지를 최대 5초 동안 플러시한 뒤 Producer 를 닫는다.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		config.Logger.Warnf("[eventbus] %d messages left after flush", remaining)
	}
	k.Producer.Close()
	config.Logger.Info("[eventbus] kafka producer closed")
}

func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver to %s: %w", topic, m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	consumerCfg := &kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false, // 재시도 로직을 위해 수동 커밋
		"partition.assignment.strategy": "range",
	}
	// 생성 + 이미지 저장은 수십 초가 걸릴 수 있다.
	if maxPoll := envPositiveInt("KAFKA_MAX_POLL_INTERVAL_MS"); maxPoll > 0 {
		(*consumerCfg)["max.poll.interval.ms"] = maxPoll
	}
	return kafka.NewConsumer(consumerCfg)
}

// Subscribe 는 기본 토픽을 구독하고 handler 를 실행한다.
// 실패한 이벤트는 재시도 토픽 또는 DLQ 로 발행된 뒤에만 오프셋이 커밋된다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer c.Close()

	topics := []string{topic.Base()}
	if err := c.SubscribeTopics(topics, nil); err != nil {
		return fmt.Errorf("subscribe %v: %w", topics, err)
	}
	config.Logger.Infof("[eventbus] consumer (%s) started: %s", groupID, strings.Join(topics, ", "))

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("[eventbus] consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.IsFatal() {
				return fmt.Errorf("consumer fatal error: %w", err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.Logger.Errorf("[eventbus] bad payload on %s: %v. skip and commit", *msg.TopicPartition.Topic, err)
			_, _ = c.CommitMessage(msg)
			continue
		}
		evt.MaxRetry = normalizeMaxRetry(evt.MaxRetry)

		if evt.Retry > 0 {
			config.Logger.Infof("[eventbus] handling %s (retry %d/%d)", evt.ID, evt.Retry, evt.MaxRetry)
		} else {
			config.Logger.Debugf("[eventbus] handling %s", evt.ID)
		}

		if herr := handler(ctx, evt); herr != nil {
			dest, dlq := nextDestination(topic, &evt, herr)
			if dlq {
				config.Logger.Errorf("[eventbus] event %s sent to DLQ %s: %v", evt.ID, dest, herr)
			} else {
				config.Logger.Warnf("[eventbus] event %s failed, retry %d/%d scheduled on %s: %v", evt.ID, evt.Retry, evt.MaxRetry, dest, herr)
			}
			if perr := k.Publish(ctx, dest, evt); perr != nil {
				// 커밋하지 않으면 메시지가 다시 전달된다.
				config.Logger.Errorf("[eventbus] publish to %s failed: %v. offset not committed", dest, perr)
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			config.Logger.Errorf("[eventbus] commit failed: %v", err)
		}
	}
}

// StartRetryReinjector 는 재시도 토픽을 구독하고, 지연 시간이 지난 메시지를 기본 토픽으로 재발행한다.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create retry reinjector: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("subscribe retry topics %v: %w", retryTopics, err)
	}
	config.Logger.Infof("[eventbus] retry reinjector (%s) started: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("[eventbus] retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("retry reinjector fatal error: %w", err)
				}
			}
			config.Logger.Errorf("[eventbus] retry reinjector read error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := ParseRetryDelayFromTopicName(topicName)
		if !ok {
			config.Logger.Errorf("[eventbus] unknown retry topic %s. skip and commit", topicName)
			_, _ = c.CommitMessage(msg)
			continue
		}

		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			// 컨슈머 전체가 막히지 않도록 짧게 쉬고, 커밋 없이 같은 위치부터 다시 읽는다.
			time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				config.Logger.Errorf("[eventbus] seek %v failed: %v", msg.TopicPartition, err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.Logger.Errorf("[eventbus] bad payload on %s: %v. skip and commit", topicName, err)
			_, _ = c.CommitMessage(msg)
			continue
		}

		config.Logger.Infof("[eventbus] reinjecting %s from %s to %s (retry %d)", evt.ID, topicName, topic.Base(), evt.Retry)
		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			config.Logger.Errorf("[eventbus] reinject %s failed: %v. offset not committed", evt.ID, err)
			continue
		}
		if _, err := c.CommitMessage(msg); err != nil {
			config.Logger.Errorf("[eventbus] commit after reinject failed: %v", err)
		}
	}
}
