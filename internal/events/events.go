package events

import (
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// ChangeEvent is published for every record store mutation. Exactly one of
// Product, Order and Expense is set, except for deletions which carry
// only EntityID.
type ChangeEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	EntityID  string          `json:"entity_id"`
	Product   *domain.Product `json:"product,omitempty"`
	Order     *domain.Order   `json:"order,omitempty"`
	Expense   *domain.Expense `json:"expense,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SystemNoticeEvent is an operator facing notice broadcast to every till
type SystemNoticeEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeProductUpserted = "product.upserted"
	EventTypeProductDeleted  = "product.deleted"
	EventTypeOrderCreated    = "order.created"
	EventTypeExpenseCreated  = "expense.created"
	EventTypeExpenseDeleted  = "expense.deleted"
	EventTypeSystemNotice    = "system.notice"
)

// Kafka topics
const (
	TopicChanges       = "pos-changes"
	TopicSystemNotices = "pos-system-notices"
)
