// Package mock provides mock repositories for testing.
package mock

import (
	"context"
	"errors"
	"time"

	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
)

type MockRepository struct {
	Impl struct {
		Get     func(context.Context) (*graph.Document, error)
		Save    func(context.Context, *graph.Document) (int64, error)
		HasData func(context.Context) (bool, error)
		Clear   func(context.Context) error
	}
}

var _ repository.Interface = &MockRepository{}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Get(ctx context.Context) (*graph.Document, error) {
	if m.Impl.Get == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Get(ctx)
}

func (m *MockRepository) Save(ctx context.Context, doc *graph.Document) (int64, error) {
	if m.Impl.Save == nil {
		return 0, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Save(ctx, doc)
}

func (m *MockRepository) HasData(ctx context.Context) (bool, error) {
	if m.Impl.HasData == nil {
		return false, errors.New("[MOCK] not implemented")
	}
	return m.Impl.HasData(ctx)
}

func (m *MockRepository) Clear(ctx context.Context) error {
	if m.Impl.Clear == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.Clear(ctx)
}

type MockProvider struct {
	Impl struct {
		Open   func(string) repository.Interface
		Expire func(context.Context, time.Time) ([]string, error)
	}
}

var _ repository.Provider = &MockProvider{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Open(sessionID string) repository.Interface {
	if m.Impl.Open == nil {
		panic("[MOCK] not implemented")
	}
	return m.Impl.Open(sessionID)
}

func (m *MockProvider) Expire(ctx context.Context, before time.Time) ([]string, error) {
	if m.Impl.Expire == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.Expire(ctx, before)
}
