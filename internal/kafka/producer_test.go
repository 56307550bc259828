package kafka

import (
	"encoding/json"
	"testing"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
)

func newTestProducer(t *testing.T, mp sarama.SyncProducer) *Producer {
	t.Helper()
	return &Producer{
		producer: mp,
		log:      logger.New(&config.LoggerConfig{Level: "error", Format: "json"}),
		topics:   &config.Topics{Orders: "orders", Promotions: "promotions", GiftCards: "gift-cards"},
	}
}

func TestPublishEvent(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageAndSucceed()

	event := models.Event{ID: uuid.New(), Type: models.EventTypeOrderPlaced}
	p := newTestProducer(t, mp)
	if err := p.publishEvent("orders", event); err != nil {
		t.Fatalf("expected publish success, got %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Fatalf("failed to close mock producer: %v", err)
	}
}

func TestProducer_WrapperMethods(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	for i := 0; i < 4; i++ {
		mp.ExpectSendMessageAndSucceed()
	}
	p := newTestProducer(t, mp)
	balance := 15.0

	order := &models.Order{ID: uuid.New(), UserID: "u1", Total: 42, Items: []models.OrderItem{{ProductID: "p1", Quantity: 1}}}
	if err := p.PublishOrderPlaced(order); err != nil {
		t.Fatalf("PublishOrderPlaced failed: %v", err)
	}
	if err := p.PublishDiscountRedeemed(models.EventTypePromoApplied, models.DiscountRedeemedData{Code: "SAVE10", Amount: 5}); err != nil {
		t.Fatalf("PublishDiscountRedeemed failed: %v", err)
	}
	if err := p.PublishGiftCardEvent(models.EventTypeGiftCardRedeemed, models.GiftCardEventData{Code: "GIFT-0001", Amount: 10, Balance: &balance}); err != nil {
		t.Fatalf("PublishGiftCardEvent failed: %v", err)
	}
	if err := p.PublishStoreCreditIssued(models.StoreCreditEventData{UserID: "u1", Amount: 20, Source: models.CreditSourceRefund}); err != nil {
		t.Fatalf("PublishStoreCreditIssued failed: %v", err)
	}
}

func TestProducer_PublishOrderPlaced_Payload(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	orderID := uuid.New()
	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "orders" {
			t.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != orderID.String() {
			t.Errorf("expected key %s, got %s", orderID, key)
		}
		raw, _ := msg.Value.Encode()
		var ev models.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return err
		}
		var data models.OrderPlacedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return err
		}
		if ev.Type != models.EventTypeOrderPlaced || data.Items != 2 || data.Total != 99.5 {
			t.Errorf("unexpected event %+v / %+v", ev, data)
		}
		return nil
	})

	p := newTestProducer(t, mp)
	order := &models.Order{ID: orderID, UserID: "u1", Total: 99.5, Items: make([]models.OrderItem, 2)}
	if err := p.PublishOrderPlaced(order); err != nil {
		t.Fatalf("PublishOrderPlaced failed: %v", err)
	}
}

func TestProducer_PublishEvent_Failure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newTestProducer(t, mp)
	ev := models.Event{ID: uuid.New(), Type: models.EventTypeOrderPlaced}
	if err := p.publishEvent("orders", ev); err == nil {
		t.Fatalf("expected error on send failure")
	}
	_ = p.Close()
}

func TestNewProducer_Error(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.KafkaConfig{Brokers: []string{"localhost:0"}}
	if _, err := NewProducer(cfg, log); err == nil {
		t.Fatalf("expected error creating producer")
	}
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on nil producer")
	}
	p = &Producer{}
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error on empty producer, got %v", err)
	}
}
