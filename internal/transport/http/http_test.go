package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	memorystore "github.com/dinetrack/order/internal/dal/store/memory"
	"github.com/dinetrack/order/internal/service/services/ordersvc"
)

const placeBody = `{
	"tableNumber": 5,
	"items": [{"name": "Pizza", "price": 250, "quantity": 2, "prepTime": 15}],
	"total": 500
}`

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type orderBody struct {
	ID               int64  `json:"id"`
	TableNumber      int    `json:"tableNumber"`
	Total            int64  `json:"total"`
	Status           string `json:"status"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Items            []struct {
		Name     string `json:"name"`
		Price    int64  `json:"price"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

func newTestTransport(opts ...ordersvc.Option) *HTTPTransport {
	base := []ordersvc.Option{
		ordersvc.WithDurableStore(memorystore.NewStore()),
		ordersvc.WithFallbackStore(memorystore.NewStore()),
	}
	h := NewHTTPTransport(ordersvc.MustNewOrderService(append(base, opts...)...), nil)
	h.RegisterRoutes()

	return h
}

func do(t *testing.T, h *HTTPTransport, method string, path string, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("malformed response body %q: %v", rec.Body.String(), err)
	}

	return rec.Code, env
}

func placeOne(t *testing.T, h *HTTPTransport) orderBody {
	t.Helper()

	code, env := do(t, h, http.MethodPost, "/api/orders", placeBody)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", code, env.Error)
	}

	var o orderBody
	if err := json.Unmarshal(env.Data, &o); err != nil {
		t.Fatalf("bad order payload: %v", err)
	}

	return o
}

func TestPlaceOrderEndpoint(t *testing.T) {
	t.Run("creates order", func(t *testing.T) {
		h := newTestTransport()

		code, env := do(t, h, http.MethodPost, "/api/orders", placeBody)
		if code != http.StatusCreated || !env.Success {
			t.Fatalf("expected 201 success, got %d %+v", code, env)
		}
		if env.Message != "Order placed successfully" {
			t.Fatalf("unexpected message %q", env.Message)
		}

		var o orderBody
		if err := json.Unmarshal(env.Data, &o); err != nil {
			t.Fatalf("bad order payload: %v", err)
		}
		if o.ID == 0 || o.Status != "pending" {
			t.Fatalf("unexpected order: %+v", o)
		}
		if o.EstimatedMinutes != 20 || o.Total != 500 {
			t.Fatalf("unexpected derived fields: %+v", o)
		}
		if len(o.Items) != 1 || o.Items[0].Price != 250 {
			t.Fatalf("unexpected items: %+v", o.Items)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		h := newTestTransport()

		code, env := do(t, h, http.MethodPost, "/api/orders", `{"tableNumber":`)
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("expected 400 failure, got %d %+v", code, env)
		}
	})

	t.Run("rejected payloads", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"zero table", `{"tableNumber":0,"items":[{"name":"Pizza","price":250,"quantity":2}],"total":500}`},
			{"no items", `{"tableNumber":5,"items":[],"total":500}`},
			{"zero total", `{"tableNumber":5,"items":[{"name":"Pizza","price":250,"quantity":2}],"total":0}`},
			{"zero quantity", `{"tableNumber":5,"items":[{"name":"Pizza","price":250,"quantity":0}],"total":250}`},
			{"unnamed item", `{"tableNumber":5,"items":[{"price":250,"quantity":1}],"total":250}`},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				h := newTestTransport()

				code, env := do(t, h, http.MethodPost, "/api/orders", tc.body)
				if code != http.StatusBadRequest || env.Success {
					t.Fatalf("expected 400 failure, got %d %+v", code, env)
				}
			})
		}
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	h := newTestTransport()
	created := placeOne(t, h)

	t.Run("found", func(t *testing.T) {
		code, env := do(t, h, http.MethodGet, "/api/orders/1", "")
		if code != http.StatusOK || !env.Success {
			t.Fatalf("expected 200, got %d %+v", code, env)
		}

		var o orderBody
		if err := json.Unmarshal(env.Data, &o); err != nil {
			t.Fatalf("bad order payload: %v", err)
		}
		if o.ID != created.ID || len(o.Items) != 1 {
			t.Fatalf("unexpected order: %+v", o)
		}
	})

	t.Run("missing", func(t *testing.T) {
		code, env := do(t, h, http.MethodGet, "/api/orders/9999", "")
		if code != http.StatusNotFound || env.Success {
			t.Fatalf("expected 404, got %d %+v", code, env)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		code, _ := do(t, h, http.MethodGet, "/api/orders/abc", "")
		if code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", code)
		}
	})
}

func TestListOrdersEndpoint(t *testing.T) {
	h := newTestTransport()
	first := placeOne(t, h)
	second := placeOne(t, h)
	if code, env := do(t, h, http.MethodPatch, "/api/orders/2/status", `{"status":"confirmed"}`); code != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", code, env)
	}

	list := func(t *testing.T, path string) (envelope, []orderBody) {
		t.Helper()
		code, env := do(t, h, http.MethodGet, path, "")
		if code != http.StatusOK || !env.Success {
			t.Fatalf("expected 200, got %d %+v", code, env)
		}
		var orders []orderBody
		if err := json.Unmarshal(env.Data, &orders); err != nil {
			t.Fatalf("bad list payload: %v", err)
		}

		return env, orders
	}

	t.Run("all orders newest first", func(t *testing.T) {
		env, orders := list(t, "/api/orders")
		if env.Count == nil || *env.Count != 2 {
			t.Fatalf("expected count 2, got %+v", env.Count)
		}
		if len(orders) != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
			t.Fatalf("expected newest first, got %+v", orders)
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		_, orders := list(t, "/api/orders?status=confirmed")
		if len(orders) != 1 || orders[0].ID != second.ID {
			t.Fatalf("unexpected result: %+v", orders)
		}
	})

	t.Run("filter by table", func(t *testing.T) {
		_, orders := list(t, "/api/orders?tableNumber=5")
		if len(orders) != 2 {
			t.Fatalf("expected both table 5 orders, got %+v", orders)
		}
	})

	t.Run("unknown status value", func(t *testing.T) {
		code, env := do(t, h, http.MethodGet, "/api/orders?status=delivered", "")
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("expected 400, got %d %+v", code, env)
		}
	})
}

func TestUpdateStatusEndpoint(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		h := newTestTransport()
		placeOne(t, h)

		code, env := do(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"confirmed"}`)
		if code != http.StatusOK || !env.Success {
			t.Fatalf("expected 200, got %d %+v", code, env)
		}

		var o orderBody
		if err := json.Unmarshal(env.Data, &o); err != nil {
			t.Fatalf("bad order payload: %v", err)
		}
		if o.Status != "confirmed" {
			t.Fatalf("expected confirmed, got %q", o.Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		h := newTestTransport()
		placeOne(t, h)

		code, env := do(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"delivered"}`)
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("expected 400, got %d %+v", code, env)
		}
	})

	t.Run("skipped state", func(t *testing.T) {
		h := newTestTransport()
		placeOne(t, h)

		code, env := do(t, h, http.MethodPatch, "/api/orders/1/status", `{"status":"preparing"}`)
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("expected 400, got %d %+v", code, env)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		h := newTestTransport()

		code, _ := do(t, h, http.MethodPatch, "/api/orders/9999/status", `{"status":"confirmed"}`)
		if code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", code)
		}
	})

	t.Run("missing status field", func(t *testing.T) {
		h := newTestTransport()
		placeOne(t, h)

		code, _ := do(t, h, http.MethodPatch, "/api/orders/1/status", `{}`)
		if code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", code)
		}
	})
}

func TestDeleteOrderEndpoint(t *testing.T) {
	h := newTestTransport()
	placeOne(t, h)

	code, env := do(t, h, http.MethodDelete, "/api/orders/1", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d %+v", code, env)
	}

	if code, _ := do(t, h, http.MethodGet, "/api/orders/1", ""); code != http.StatusNotFound {
		t.Fatalf("expected order gone, got %d", code)
	}
	if code, _ := do(t, h, http.MethodDelete, "/api/orders/1", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	type health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Degraded bool   `json:"degraded"`
	}

	decode := func(t *testing.T, env envelope) health {
		t.Helper()
		var hl health
		if err := json.Unmarshal(env.Data, &hl); err != nil {
			t.Fatalf("bad health payload: %v", err)
		}

		return hl
	}

	t.Run("healthy", func(t *testing.T) {
		h := newTestTransport()

		code, env := do(t, h, http.MethodGet, "/health", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		hl := decode(t, env)
		if hl.Database != "up" || hl.Degraded {
			t.Fatalf("expected healthy report, got %+v", hl)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		svc := ordersvc.MustNewOrderService(
			ordersvc.WithFallbackStore(memorystore.NewStore()),
		)
		h := NewHTTPTransport(svc, nil)
		h.RegisterRoutes()

		code, env := do(t, h, http.MethodGet, "/health", "")
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		hl := decode(t, env)
		if hl.Database != "degraded" || !hl.Degraded {
			t.Fatalf("expected degraded report, got %+v", hl)
		}
	})
}
