//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_WithStore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	pid := fmt.Sprintf("p_%d_%d", time.Now().Unix(), rand.Intn(100000))
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{
		"id":       pid,
		"name":     "E2E Keyboard",
		"price":    "10.00",
		"quantity": 5,
	}, nil, 201)

	var cust struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, baseURL+"/customers", map[string]any{
		"name":  "E2E Customer",
		"email": "e2e@example.com",
	}, &cust, 201)
	if cust.ID == "" {
		t.Fatalf("customer id missing")
	}

	var created struct {
		OrderID string `json:"order_id"`
	}
	doJSON(t, http.MethodPost, baseURL+"/orders", map[string]any{
		"customer_id": cust.ID,
	}, &created, 201)
	if created.OrderID == "" {
		t.Fatalf("order id missing")
	}

	var withItem struct {
		TotalAmount json.Number `json:"total_amount"`
	}
	doJSON(t, http.MethodPost, baseURL+"/orders/"+created.OrderID+"/items", map[string]any{
		"product_id": pid,
		"quantity":   3,
	}, &withItem, 200)
	if withItem.TotalAmount.String() != "30" {
		t.Fatalf("total_amount=%s want=30", withItem.TotalAmount)
	}

	checkInvoice(t, created.OrderID)

	if os.Getenv("E2E_RESTART_API") == "1" {
		restartAPIContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		var got struct {
			OrderID     string      `json:"order_id"`
			TotalAmount json.Number `json:"total_amount"`
		}
		doJSON(t, http.MethodGet, baseURL+"/orders/"+created.OrderID, nil, &got, 200)
		if got.TotalAmount != withItem.TotalAmount {
			t.Fatalf("total after restart=%s want=%s", got.TotalAmount, withItem.TotalAmount)
		}
		checkInvoice(t, created.OrderID)
	}
}

func checkInvoice(t *testing.T, orderID string) {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/orders/" + orderID + "/invoice")
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("invoice status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read invoice: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("invoice is not a pdf")
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
