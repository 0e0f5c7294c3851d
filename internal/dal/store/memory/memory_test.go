package memorystore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
)

func pizzaOrder(table int) order.Order {
	return order.Order{
		TableNumber: table,
		TotalCents:  500,
		Status:      status.StatusPending,
		Lines: []orderline.OrderLine{
			{Name: "Pizza", PriceCents: 250, Quantity: 2, PrepMinutes: 15},
		},
		EstimatedMinutes: 20,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns ids and timestamps", func(t *testing.T) {
		s := NewStore()

		created, err := s.CreateOrder(ctx, pizzaOrder(5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("expected order id to be assigned")
		}
		if len(created.Lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(created.Lines))
		}
		if created.Lines[0].ID == 0 || created.Lines[0].OrderID != created.ID {
			t.Fatalf("expected line ids bound to order, got %+v", created.Lines[0])
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Fatal("expected timestamps")
		}
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		s := NewStore()

		o := pizzaOrder(5)
		o.Lines = nil
		if _, err := s.CreateOrder(ctx, o); !errors.Is(err, order.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if s.Len() != 0 {
			t.Fatal("no partial order may be stored")
		}
	})

	t.Run("ids are never reused", func(t *testing.T) {
		s := NewStore()

		first, _ := s.CreateOrder(ctx, pizzaOrder(1))
		if _, err := s.DeleteOrder(ctx, first.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _ := s.CreateOrder(ctx, pizzaOrder(1))
		if second.ID <= first.ID {
			t.Fatalf("expected fresh id after delete, got %d <= %d", second.ID, first.ID)
		}
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, _ := s.CreateOrder(ctx, pizzaOrder(5))

	t.Run("found", func(t *testing.T) {
		got, err := s.GetOrder(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != created.ID || len(got.Lines) != 1 {
			t.Fatalf("unexpected order: %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := s.GetOrder(ctx, 9999); !errors.Is(err, order.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("returned order is a copy", func(t *testing.T) {
		got, _ := s.GetOrder(ctx, created.ID)
		got.Lines[0].Name = "mutated"

		again, _ := s.GetOrder(ctx, created.ID)
		if again.Lines[0].Name != "Pizza" {
			t.Fatal("store contents must not be mutable through returned orders")
		}
	})
}

func TestQueryOrders(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, _ := s.CreateOrder(ctx, pizzaOrder(5))
	time.Sleep(2 * time.Millisecond)
	second, _ := s.CreateOrder(ctx, pizzaOrder(6))
	if _, err := s.UpdateStatus(ctx, second.ID, status.StatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := s.QueryOrders(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
			t.Fatalf("expected newest first, got %+v", got)
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		got, _ := s.QueryOrders(ctx, &order.QueryOrdersModel{Status: status.StatusConfirmed})
		if len(got) != 1 || got[0].ID != second.ID {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("filter by table", func(t *testing.T) {
		got, _ := s.QueryOrders(ctx, &order.QueryOrdersModel{TableNumber: 5})
		if len(got) != 1 || got[0].ID != first.ID {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("no match", func(t *testing.T) {
		got, _ := s.QueryOrders(ctx, &order.QueryOrdersModel{TableNumber: 42})
		if len(got) != 0 {
			t.Fatalf("expected empty result, got %+v", got)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, _ := s.CreateOrder(ctx, pizzaOrder(5))

	t.Run("updates status and timestamp", func(t *testing.T) {
		got, err := s.UpdateStatus(ctx, created.ID, status.StatusConfirmed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != status.StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", got.Status)
		}
		if got.UpdatedAt.Before(created.UpdatedAt) {
			t.Fatal("expected updated_at to be refreshed")
		}
	})

	t.Run("unknown status leaves order unchanged", func(t *testing.T) {
		if _, err := s.UpdateStatus(ctx, created.ID, status.Status("bogus")); !errors.Is(err, status.ErrUnknownStatus) {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
		got, _ := s.GetOrder(ctx, created.ID)
		if got.Status != status.StatusConfirmed {
			t.Fatalf("status must be unchanged, got %s", got.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := s.UpdateStatus(ctx, 9999, status.StatusReady); !errors.Is(err, order.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, _ := s.CreateOrder(ctx, pizzaOrder(5))

	existed, err := s.DeleteOrder(ctx, created.ID)
	if err != nil || !existed {
		t.Fatalf("expected delete to report existence, got %v %v", existed, err)
	}
	if _, err := s.GetOrder(ctx, created.ID); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}

	existed, err = s.DeleteOrder(ctx, created.ID)
	if err != nil || existed {
		t.Fatalf("expected second delete to report absence, got %v %v", existed, err)
	}
}

func TestPing(t *testing.T) {
	if err := NewStore().Ping(context.Background()); err != nil {
		t.Fatalf("memory store ping must always succeed, got %v", err)
	}
}
