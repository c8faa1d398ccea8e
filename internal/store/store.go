package store

import (
	"context"
	"errors"
	"time"

	"emsnav/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Plans
	CreatePlan(ctx context.Context, plan model.DispatchPlan) (model.DispatchPlan, error)
	GetPlan(ctx context.Context, id string) (model.DispatchPlan, error)
	ListPlans(ctx context.Context, cursor string, limit int) (items []model.DispatchPlan, nextCursor string, err error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id, lastError string, responseCode, latencyMs int) error

	// Health
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
