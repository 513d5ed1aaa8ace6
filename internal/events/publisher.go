package events

import (
	"time"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/bookstore/ledger/internal/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Event types
	EventTypeProductCreated = "catalog.created"
	EventTypeProductUpdated = "catalog.updated"
	EventTypeProductDeleted = "catalog.deleted"
	EventTypeSaleRecorded   = "sale.recorded"
	EventTypeLedgerSaved    = "ledger.saved"

	eventVersion = "1.0.0"
)

// AllEventTypes lists every event type the publisher emits
var AllEventTypes = []string{
	EventTypeProductCreated,
	EventTypeProductUpdated,
	EventTypeProductDeleted,
	EventTypeSaleRecorded,
	EventTypeLedgerSaved,
}

// Event represents a domain event
type Event struct {
	EventID      string                 `json:"event_id"`
	EventType    string                 `json:"event_type"`
	EventVersion string                 `json:"event_version"`
	Timestamp    string                 `json:"timestamp"`
	Payload      map[string]interface{} `json:"payload"`
}

// Handler receives published events
type Handler func(Event)

// Publisher delivers domain events to in-process subscribers. Delivery is
// synchronous: Publish returns after every handler has run.
type Publisher struct {
	bus EventBus.Bus
	log *zap.Logger
}

// NewPublisher creates a publisher with no subscribers
func NewPublisher(log *zap.Logger) *Publisher {
	return &Publisher{
		bus: EventBus.New(),
		log: log,
	}
}

// Subscribe registers handler for one event type
func (p *Publisher) Subscribe(eventType string, handler Handler) error {
	return p.bus.Subscribe(eventType, handler)
}

// SubscribeAll registers handler for every event type
func (p *Publisher) SubscribeAll(handler Handler) error {
	for _, eventType := range AllEventTypes {
		if err := p.Subscribe(eventType, handler); err != nil {
			return err
		}
	}
	return nil
}

// PublishProductCreated publishes a product created event
func (p *Publisher) PublishProductCreated(product db.Product) {
	p.publish(EventTypeProductCreated, map[string]interface{}{
		"id":       product.ID,
		"title":    product.Title,
		"author":   product.Author,
		"category": product.Category,
		"price":    product.Price,
		"quantity": product.Quantity,
	})
}

// PublishProductUpdated publishes a product updated event
func (p *Publisher) PublishProductUpdated(product db.Product, fieldsChanged []string) {
	payload := map[string]interface{}{
		"id":             product.ID,
		"fields_changed": fieldsChanged,
	}

	// Add updated field values to payload
	for k, v := range buildUpdatePayload(product, fieldsChanged) {
		payload[k] = v
	}

	p.publish(EventTypeProductUpdated, payload)
}

// PublishProductDeleted publishes a product deleted event
func (p *Publisher) PublishProductDeleted(product db.Product) {
	p.publish(EventTypeProductDeleted, map[string]interface{}{
		"id":    product.ID,
		"title": product.Title,
	})
}

// PublishSaleRecorded publishes a sale recorded event
func (p *Publisher) PublishSaleRecorded(sale db.Sale, discountAmount float64) {
	p.publish(EventTypeSaleRecorded, map[string]interface{}{
		"customer":        sale.Customer,
		"product":         sale.Product,
		"author":          sale.Author,
		"quantity_sold":   sale.QuantitySold,
		"unit_price":      sale.UnitPrice,
		"discount":        sale.Discount,
		"discount_amount": discountAmount,
		"total":           sale.Total,
	})
}

// PublishSaved publishes the outcome of writing one data file
func (p *Publisher) PublishSaved(file string, records int, err error) {
	payload := map[string]interface{}{
		"file":    file,
		"records": records,
		"result":  "ok",
	}
	if err != nil {
		payload["result"] = "error"
		payload["error"] = err.Error()
	}
	p.publish(EventTypeLedgerSaved, payload)
}

func (p *Publisher) publish(eventType string, payload map[string]interface{}) {
	event := Event{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: eventVersion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Payload:      payload,
	}

	p.bus.Publish(eventType, event)
	p.log.Debug("Event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)
}

// AuditHandler returns a handler that writes every event to log
func AuditHandler(log *zap.Logger) Handler {
	return func(e Event) {
		log.Info("Ledger event",
			zap.String("event_id", e.EventID),
			zap.String("event_type", e.EventType),
			zap.Any("payload", e.Payload),
		)
	}
}

func buildUpdatePayload(product db.Product, fieldsChanged []string) map[string]interface{} {
	payload := make(map[string]interface{})
	for _, field := range fieldsChanged {
		switch field {
		case "title":
			payload["title"] = product.Title
		case "author":
			payload["author"] = product.Author
		case "category":
			payload["category"] = product.Category
		case "price":
			payload["price"] = product.Price
		case "quantity":
			payload["quantity"] = product.Quantity
		}
	}
	return payload
}
