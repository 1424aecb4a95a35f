package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Watched collection names, matching the API's resource naming.
const (
	CollectionCompanies       = "companies"
	CollectionPayments        = "payments"
	CollectionLabor           = "labor"
	CollectionLaborExpenses   = "labor_expenses"
	CollectionSalaryPayments  = "salary_payments"
	CollectionSideProjects    = "side_projects"
	CollectionProjectExpenses = "project_expenses"
	CollectionInvoices        = "invoices"
	CollectionSettings        = "settings"
)

func AllCollections() []string {
	return []string{
		CollectionCompanies,
		CollectionPayments,
		CollectionLabor,
		CollectionLaborExpenses,
		CollectionSalaryPayments,
		CollectionSideProjects,
		CollectionProjectExpenses,
		CollectionInvoices,
		CollectionSettings,
	}
}

func ValidCollection(name string) bool {
	for _, c := range AllCollections() {
		if c == name {
			return true
		}
	}
	return false
}

type Event struct {
	Collection string    `json:"collection"`
	Action     Action    `json:"action"`
	EntityID   uint      `json:"entity_id"`
	At         time.Time `json:"at"`
}

// Mirror receives every published event in addition to the in-process
// subscribers. Used for the optional AMQP bridge.
type Mirror interface {
	Publish(ev Event) error
}

// Subscription lifecycle: created by Subscribe (subscribed), closed by
// Unsubscribe (torn down). Reads from C stop when the channel closes.
type Subscription struct {
	ID         string
	Collection string
	C          <-chan Event

	ch chan Event
}

// Hub is the single change-notification fan-out point for the whole
// server. Each mutation publishes one event scoped to its collection;
// subscribers of other collections never see it. Subscribers that fall
// behind lose events rather than blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription
	mirror Mirror
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]*Subscription)}
}

func (h *Hub) SetMirror(m Mirror) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mirror = m
}

func (h *Hub) Subscribe(collection string) *Subscription {
	ch := make(chan Event, 16)
	sub := &Subscription{
		ID:         uuid.NewString(),
		Collection: collection,
		C:          ch,
		ch:         ch,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[string]*Subscription)
	}
	h.subs[collection][sub.ID] = sub
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[sub.Collection]; ok {
		if _, ok := m[sub.ID]; ok {
			delete(m, sub.ID)
			close(sub.ch)
		}
	}
}

func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	for _, sub := range h.subs[ev.Collection] {
		select {
		case sub.ch <- ev:
		default: // slow subscriber, drop
		}
	}
	mirror := h.mirror
	h.mu.RUnlock()

	if mirror != nil {
		if err := mirror.Publish(ev); err != nil {
			log.Printf("event mirror publish failed: %v", err)
		}
	}
}

// SubscriberCount reports active subscriptions for a collection.
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}
