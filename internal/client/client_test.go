package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/erazemk/sweetshop/internal/model"
	"github.com/erazemk/sweetshop/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(server.URL + "/")
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in model.LoginInput
		json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "ana@example.com" || in.Password != "secret" {
			t.Errorf("unexpected body: %+v", in)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "a.b.c",
			"user":  map[string]string{"email": "ana@example.com", "name": "Ana", "role": "admin"},
		})
	})

	res, err := c.Login(context.Background(), model.LoginInput{Email: "ana@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "a.b.c" || res.User == nil || res.User.Role != "admin" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestLoginErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	})

	_, err := c.Login(context.Background(), model.LoginInput{Email: "a@example.com", Password: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.UserMessage() != "Invalid credentials" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestListAcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"wrapped": `{"sweets":[{"_id":"1","name":"Fudge","category":"chocolate","price":3,"quantity":5}]}`,
		"bare":    `[{"id":"1","name":"Fudge","category":"chocolate","price":3,"quantity":5}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("expected bearer token, got %q", got)
				}
				w.Write([]byte(body))
			})
			inv := NewInventory(c, session.NewMemoryStorage("tok"))

			items, err := inv.List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != 1 || items[0].ID != "1" || items[0].Quantity != 5 {
				t.Errorf("unexpected items: %+v", items)
			}
		})
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sweets":null}`))
	})
	items, err := NewInventory(c, session.NewMemoryStorage("tok")).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil {
		t.Error("expected empty, non-nil slice")
	}
}

func TestListFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := NewInventory(c, session.NewMemoryStorage("tok")).List(context.Background())
	if !errors.Is(err, ErrInventoryFetchFailed) {
		t.Errorf("expected ErrInventoryFetchFailed, got %v", err)
	}
}

func TestMutationsWithoutTokenSendNothing(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	inv := NewInventory(c, session.NewMemoryStorage(""))

	err := inv.Restock(context.Background(), "1", 10)
	if !errors.Is(err, ErrInventoryMutationFailed) || !errors.Is(err, ErrNoToken) {
		t.Errorf("expected mutation failure without token, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no request, got %d", calls)
	}
}

func TestMutationRequests(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		w.WriteHeader(http.StatusOK)
	})
	inv := NewInventory(c, session.NewMemoryStorage("tok"))
	ctx := context.Background()
	in := model.ItemInput{Name: "Lolly", Category: model.CategoryLollipop, Price: 0.5, Quantity: 3}

	if err := inv.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := inv.Update(ctx, "abc", in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := inv.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := inv.Restock(ctx, "abc", 10); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/api/sweets"},
		{http.MethodPut, "/api/sweets/abc"},
		{http.MethodDelete, "/api/sweets/abc"},
		{http.MethodPost, "/api/sweets/abc/restock"},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i, w := range want {
		if calls[i].method != w.method || calls[i].path != w.path {
			t.Errorf("call %d: got %s %s, want %s %s", i, calls[i].method, calls[i].path, w.method, w.path)
		}
	}
	if calls[0].body["category"] != "lollipop" {
		t.Errorf("unexpected create body: %v", calls[0].body)
	}
	if calls[3].body["quantity"] != float64(10) {
		t.Errorf("unexpected restock body: %v", calls[3].body)
	}
}

func TestMutationFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Admin access required"}`))
	})

	err := NewInventory(c, session.NewMemoryStorage("tok")).Delete(context.Background(), "1")
	if !errors.Is(err, ErrInventoryMutationFailed) {
		t.Fatalf("expected ErrInventoryMutationFailed, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Errorf("expected wrapped 403, got %v", err)
	}
}

func TestMetricsRecorded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	reg := prometheus.NewRegistry()
	c.Metrics = NewMetrics(reg)

	NewInventory(c, session.NewMemoryStorage("tok")).List(context.Background())

	if got := testutil.ToFloat64(c.Metrics.Requests.WithLabelValues("list", "200")); got != 1 {
		t.Errorf("expected 1 recorded list call, got %v", got)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
		w.Write([]byte(`[]`))
	})

	ctx := WithRequestID(context.Background(), "req-123")
	if _, err := NewInventory(c, session.NewMemoryStorage("tok")).List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got != "req-123" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}
