package hub

import (
	"encoding/json"
	"testing"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func drain(t *testing.T, c *Conn) []frame {
	t.Helper()

	var frames []frame
	for {
		select {
		case payload := <-c.Outbound():
			var f frame
			if err := json.Unmarshal(payload, &f); err != nil {
				t.Fatalf("malformed frame %q: %v", payload, err)
			}
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestTopicNames(t *testing.T) {
	if got := TableTopic(5); got != "table:5" {
		t.Fatalf("TableTopic(5) = %q", got)
	}
	if KitchenTopic != "kitchen" {
		t.Fatalf("KitchenTopic = %q", KitchenTopic)
	}
}

func TestPublish(t *testing.T) {
	t.Run("topic isolation", func(t *testing.T) {
		h := NewHub(8)
		table5 := h.Register()
		table6 := h.Register()
		kitchen := h.Register()
		h.Subscribe(table5, TableTopic(5))
		h.Subscribe(table6, TableTopic(6))
		h.Subscribe(kitchen, KitchenTopic)

		h.Publish(TableTopic(5), "orderConfirmed", map[string]int{"orderId": 1})
		h.Publish(KitchenTopic, "orderCreated", map[string]int{"orderId": 1})

		if got := drain(t, table5); len(got) != 1 || got[0].Event != "orderConfirmed" {
			t.Fatalf("table5 got %+v", got)
		}
		if got := drain(t, table6); len(got) != 0 {
			t.Fatalf("table6 must not receive table5 or kitchen events, got %+v", got)
		}
		if got := drain(t, kitchen); len(got) != 1 || got[0].Event != "orderCreated" {
			t.Fatalf("kitchen got %+v", got)
		}
	})

	t.Run("per-topic publish order is preserved", func(t *testing.T) {
		h := NewHub(64)
		c := h.Register()
		h.Subscribe(c, KitchenTopic)

		for i := 0; i < 20; i++ {
			h.Publish(KitchenTopic, "orderStatusChanged", map[string]int{"seq": i})
		}

		frames := drain(t, c)
		if len(frames) != 20 {
			t.Fatalf("expected 20 frames, got %d", len(frames))
		}
		for i, f := range frames {
			var data struct {
				Seq int `json:"seq"`
			}
			if err := json.Unmarshal(f.Data, &data); err != nil {
				t.Fatalf("bad data: %v", err)
			}
			if data.Seq != i {
				t.Fatalf("frame %d carries seq %d: reordering", i, data.Seq)
			}
		}
	})

	t.Run("no replay for late subscribers", func(t *testing.T) {
		h := NewHub(8)
		h.Publish(KitchenTopic, "orderCreated", nil)

		late := h.Register()
		h.Subscribe(late, KitchenTopic)
		if got := drain(t, late); len(got) != 0 {
			t.Fatalf("late subscriber must not see past events, got %+v", got)
		}
	})

	t.Run("slow consumer is torn down, others unaffected", func(t *testing.T) {
		h := NewHub(2)
		slow := h.Register()
		fast := h.Register()
		h.Subscribe(slow, KitchenTopic)
		h.Subscribe(fast, KitchenTopic)

		// Fill the slow consumer's buffer, drain the fast one as we go.
		for i := 0; i < 3; i++ {
			h.Publish(KitchenTopic, "orderStatusChanged", map[string]int{"seq": i})
			drain(t, fast)
		}

		select {
		case <-slow.Closed():
		default:
			t.Fatal("expected slow consumer to be closed")
		}
		if got := h.SubscriberCount(KitchenTopic); got != 1 {
			t.Fatalf("expected 1 remaining subscriber, got %d", got)
		}

		h.Publish(KitchenTopic, "orderStatusChanged", map[string]int{"seq": 3})
		if got := drain(t, fast); len(got) != 1 {
			t.Fatalf("fast consumer must keep receiving, got %+v", got)
		}
	})
}

func TestMembership(t *testing.T) {
	t.Run("subscribe is idempotent", func(t *testing.T) {
		h := NewHub(8)
		c := h.Register()
		h.Subscribe(c, KitchenTopic)
		h.Subscribe(c, KitchenTopic)

		if got := h.SubscriberCount(KitchenTopic); got != 1 {
			t.Fatalf("expected 1 subscriber, got %d", got)
		}

		h.Publish(KitchenTopic, "orderCreated", nil)
		if got := drain(t, c); len(got) != 1 {
			t.Fatalf("expected single delivery, got %d", len(got))
		}
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		h := NewHub(8)
		c := h.Register()
		h.Subscribe(c, TableTopic(5))
		h.Unsubscribe(c, TableTopic(5))

		h.Publish(TableTopic(5), "orderConfirmed", nil)
		if got := drain(t, c); len(got) != 0 {
			t.Fatalf("expected no delivery, got %+v", got)
		}
	})

	t.Run("remove drops all memberships", func(t *testing.T) {
		h := NewHub(8)
		c := h.Register()
		h.Subscribe(c, TableTopic(5))
		h.Subscribe(c, KitchenTopic)

		h.Remove(c)

		if h.SubscriberCount(TableTopic(5)) != 0 || h.SubscriberCount(KitchenTopic) != 0 {
			t.Fatal("expected no dangling subscriptions after remove")
		}
		select {
		case <-c.Closed():
		default:
			t.Fatal("expected connection to be closed")
		}
	})

	t.Run("subscribe after remove is a no-op", func(t *testing.T) {
		h := NewHub(8)
		c := h.Register()
		h.Remove(c)

		h.Subscribe(c, KitchenTopic)
		if got := h.SubscriberCount(KitchenTopic); got != 0 {
			t.Fatalf("expected removed connection to stay out, got %d", got)
		}
	})
}
