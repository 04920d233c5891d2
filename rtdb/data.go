package rtdb

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrItemExists reports a create against an occupied id.
	ErrItemExists = errors.New("item already exists")
	// ErrItemNotFound reports an update or delete against an empty id.
	ErrItemNotFound = errors.New("item not found")
	// ErrWriteRejected reports that the store refused a mutation.
	ErrWriteRejected = errors.New("store rejected write")
)

// DataService is the collection-shaped layer over the raw client: items
// live at <collection>/<id> and carry their id injected into the value.
type DataService struct {
	client *Client
}

// NewDataService wraps a shared client.
func NewDataService(client *Client) *DataService {
	return &DataService{client: client}
}

// GetAll flattens the {id: record} node at collection into a list with the
// ids folded in. An empty or unreachable collection yields an empty list.
func (s *DataService) GetAll(ctx context.Context, collection string) []map[string]any {
	node := s.client.Read(ctx, collection)
	items := make([]map[string]any, 0, len(node))
	for id, value := range node {
		record, ok := value.(map[string]any)
		if !ok {
			continue
		}
		item := map[string]any{"id": id}
		for k, v := range record {
			if k != "id" {
				item[k] = v
			}
		}
		items = append(items, item)
	}
	return items
}

// GetByID returns the item or nil when absent.
func (s *DataService) GetByID(ctx context.Context, collection, id string) map[string]any {
	record := s.client.Read(ctx, collection+"/"+id)
	if record == nil {
		return nil
	}
	item := map[string]any{"id": id}
	for k, v := range record {
		if k != "id" {
			item[k] = v
		}
	}
	return item
}

// Create writes a new item, rejecting occupied ids. The stored value never
// carries the id field.
func (s *DataService) Create(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	if existing := s.GetByID(ctx, collection, id); existing != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrItemExists, collection, id)
	}

	clean := stripID(data)
	if !s.client.Write(ctx, collection+"/"+id, clean) {
		return nil, fmt.Errorf("%w: %s/%s", ErrWriteRejected, collection, id)
	}

	item := map[string]any{"id": id}
	for k, v := range clean {
		item[k] = v
	}
	return item, nil
}

// Update merges data into an existing item.
func (s *DataService) Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	if existing := s.GetByID(ctx, collection, id); existing == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrItemNotFound, collection, id)
	}

	clean := stripID(data)
	if !s.client.Update(ctx, collection+"/"+id, clean) {
		return nil, fmt.Errorf("%w: %s/%s", ErrWriteRejected, collection, id)
	}

	return s.GetByID(ctx, collection, id), nil
}

// Delete removes an existing item.
func (s *DataService) Delete(ctx context.Context, collection, id string) error {
	if existing := s.GetByID(ctx, collection, id); existing == nil {
		return fmt.Errorf("%w: %s/%s", ErrItemNotFound, collection, id)
	}
	if !s.client.Delete(ctx, collection+"/"+id) {
		return fmt.Errorf("%w: %s/%s", ErrWriteRejected, collection, id)
	}
	return nil
}

func stripID(data map[string]any) map[string]any {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if k != "id" {
			clean[k] = v
		}
	}
	return clean
}
