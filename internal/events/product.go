// Package events defines the domain events emitted after catalog mutations.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/messaging"
)

const (
	StreamName = "CATALOG"

	SubjectWildcard       = "catalog.product.>"
	ProductCreatedSubject = "catalog.product.created"
	ProductUpdatedSubject = "catalog.product.updated"
	ProductRemovedSubject = "catalog.product.removed"
)

var (
	_ messaging.Event = ProductCreatedEvent{}
	_ messaging.Event = ProductUpdatedEvent{}
	_ messaging.Event = ProductRemovedEvent{}
)

type ProductCreatedEvent struct {
	Product    store.Product `json:"product"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return ProductCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductUpdatedEvent struct {
	Product    store.Product `json:"product"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return ProductUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductRemovedEvent struct {
	ProductID  int64     `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductRemovedEvent) Subject() string {
	return ProductRemovedSubject
}

func (e ProductRemovedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// Decode turns a payload received on one of the catalog subjects back into its event.
func Decode(subject string, data []byte) (messaging.Event, error) {
	var (
		event messaging.Event
		err   error
	)
	switch subject {
	case ProductCreatedSubject:
		var e ProductCreatedEvent
		err = json.Unmarshal(data, &e)
		event = e
	case ProductUpdatedSubject:
		var e ProductUpdatedEvent
		err = json.Unmarshal(data, &e)
		event = e
	case ProductRemovedSubject:
		var e ProductRemovedEvent
		err = json.Unmarshal(data, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown subject %q", subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", subject, err)
	}
	return event, nil
}
