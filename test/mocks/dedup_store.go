package mocks

import "context"

// MockDedupStore is a simple mock for the delivery dedup store
type MockDedupStore struct {
	FirstDeliveryFunc func(ctx context.Context, key string) (bool, error)
	ReleaseFunc       func(ctx context.Context, key string) error

	Keys     []string
	Released []string
}

func (m *MockDedupStore) FirstDelivery(ctx context.Context, key string) (bool, error) {
	m.Keys = append(m.Keys, key)
	if m.FirstDeliveryFunc != nil {
		return m.FirstDeliveryFunc(ctx, key)
	}
	return true, nil
}

func (m *MockDedupStore) Release(ctx context.Context, key string) error {
	m.Released = append(m.Released, key)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	return nil
}
