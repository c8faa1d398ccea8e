package store

import (
	"context"
	"testing"
	"time"

	"emsnav/internal/model"
)

func TestMemoryPlanCRUD(t *testing.T) {
	m := NewMemory()
	plan, err := m.CreatePlan(context.Background(), model.DispatchPlan{Depot: 1, Incidents: []int64{2, 3}, Vehicles: 2, TotalCostM: 13})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.ID == "" || plan.CreatedAt == "" {
		t.Fatalf("plan missing id/createdAt: %+v", plan)
	}
	got, err := m.GetPlan(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.TotalCostM != 13 {
		t.Fatalf("got cost %v, want 13", got.TotalCostM)
	}
	if _, err := m.GetPlan(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryListPlansPagination(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 5; i++ {
		if _, err := m.CreatePlan(context.Background(), model.DispatchPlan{Depot: int64(i)}); err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
	}
	page1, next, err := m.ListPlans(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(page1) != 2 || next == "" {
		t.Fatalf("page1: %d items, next=%q", len(page1), next)
	}
	page2, next2, err := m.ListPlans(context.Background(), next, 2)
	if err != nil {
		t.Fatalf("ListPlans page2: %v", err)
	}
	if len(page2) != 2 || next2 == "" {
		t.Fatalf("page2: %d items, next=%q", len(page2), next2)
	}
	if page2[0].ID == page1[0].ID || page2[0].ID == page1[1].ID {
		t.Fatalf("pages overlap")
	}
	page3, next3, err := m.ListPlans(context.Background(), next2, 2)
	if err != nil {
		t.Fatalf("ListPlans page3: %v", err)
	}
	if len(page3) != 1 || next3 != "" {
		t.Fatalf("page3: %d items, next=%q", len(page3), next3)
	}
}

func TestMemorySubscriptionsAndEventMatch(t *testing.T) {
	m := NewMemory()
	sub, err := m.CreateSubscription(context.Background(), model.SubscriptionRequest{URL: "https://example.invalid/hook", Events: []string{"plan.created"}, Secret: "shh"})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if _, err := m.CreateSubscription(context.Background(), model.SubscriptionRequest{URL: "https://example.invalid/all", Events: []string{"*"}}); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	subs, err := m.GetSubscriptionsForEvent(context.Background(), "plan.created")
	if err != nil {
		t.Fatalf("GetSubscriptionsForEvent: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("want 2 matching subs, got %d", len(subs))
	}

	subs, err = m.GetSubscriptionsForEvent(context.Background(), "plan.deleted")
	if err != nil {
		t.Fatalf("GetSubscriptionsForEvent: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("wildcard only: got %d", len(subs))
	}

	listed, _, err := m.ListSubscriptions(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	for _, s := range listed {
		if s.Secret != "" {
			t.Fatalf("listing should not expose secrets")
		}
	}

	if err := m.DeleteSubscription(context.Background(), sub.ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if err := m.DeleteSubscription(context.Background(), sub.ID); err != ErrNotFound {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestMemoryWebhookDeliveryLifecycle(t *testing.T) {
	m := NewMemory()
	id, err := m.EnqueueWebhook(context.Background(), "sub1", "plan.created", "https://example.invalid/hook", "shh", []byte(`{}`))
	if err != nil {
		t.Fatalf("EnqueueWebhook: %v", err)
	}
	due, err := m.FetchDueWebhookDeliveries(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchDue: %v", err)
	}
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("due: %+v", due)
	}

	// Failed attempt reschedules into the future.
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(context.Background(), id, false, &next, "boom", 500, 12); err != nil {
		t.Fatalf("MarkWebhookDelivery: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(context.Background(), 10)
	if len(due) != 0 {
		t.Fatalf("rescheduled delivery should not be due, got %d", len(due))
	}

	// Success removes it from the queue for good.
	past := time.Now().Add(-time.Minute)
	_ = m.MarkWebhookDelivery(context.Background(), id, false, &past, "boom", 500, 12)
	if err := m.MarkWebhookDelivery(context.Background(), id, true, nil, "", 200, 8); err != nil {
		t.Fatalf("MarkWebhookDelivery success: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(context.Background(), 10)
	if len(due) != 0 {
		t.Fatalf("delivered should not be due")
	}

	// Terminal failure.
	id2, _ := m.EnqueueWebhook(context.Background(), "sub1", "plan.created", "https://example.invalid/hook", "", []byte(`{}`))
	if err := m.FailWebhookDelivery(context.Background(), id2, "gave up", 503, 4); err != nil {
		t.Fatalf("FailWebhookDelivery: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(context.Background(), 10)
	if len(due) != 0 {
		t.Fatalf("failed should not be due")
	}
}
