package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует доменные события магазина в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного продюсера
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// PublishOrderPlaced публикует событие оформления заказа
func (p *Producer) PublishOrderPlaced(order *models.Order) error {
	data := models.OrderPlacedData{
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   len(order.Items),
	}
	return p.publish(p.topics.Orders, models.EventTypeOrderPlaced, order.ID.String(), data)
}

// PublishDiscountRedeemed публикует использование промокода или купона
func (p *Producer) PublishDiscountRedeemed(eventType models.EventType, data models.DiscountRedeemedData) error {
	return p.publish(p.topics.Promotions, eventType, data.Code, data)
}

// PublishGiftCardEvent публикует выпуск или списание подарочной карты
func (p *Producer) PublishGiftCardEvent(eventType models.EventType, data models.GiftCardEventData) error {
	return p.publish(p.topics.GiftCards, eventType, data.Code, data)
}

// PublishStoreCreditIssued публикует начисление кредита магазина
func (p *Producer) PublishStoreCreditIssued(data models.StoreCreditEventData) error {
	return p.publish(p.topics.GiftCards, models.EventTypeStoreCreditIssued, data.UserID, data)
}

func (p *Producer) publish(topic string, eventType models.EventType, key string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Key:       key,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}
	return p.publishEvent(topic, event)
}

func (p *Producer) publishEvent(topic string, event models.Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.Key
	if key == "" {
		key = event.ID.String()
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(eventData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.WithError(err).WithField("topic", topic).Error("Failed to send event")
		return fmt.Errorf("failed to send event: %w", err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"event_type": event.Type,
		"event_id":   event.ID,
	}).Debug("Event published")

	return nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
