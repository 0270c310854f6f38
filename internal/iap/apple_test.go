package iap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appleServer(t *testing.T, status int, hits *int32, check func(verifyRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req verifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": status,
			"latest_receipt_info": []map[string]string{
				{"transaction_id": "t1", "original_transaction_id": "o1", "product_id": "com.caerus.investor.monthly", "expires_date_ms": "1700000000000"},
				{"transaction_id": "t2", "original_transaction_id": "o1", "product_id": "com.caerus.investor.monthly", "expires_date_ms": "1800000000000"},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAppleClient_ProductionValid(t *testing.T) {
	var prodHits, sandboxHits int32
	prod := appleServer(t, 0, &prodHits, func(req verifyRequest) {
		assert.Equal(t, "receipt", req.ReceiptData)
		assert.Equal(t, "shh", req.Password)
		assert.True(t, req.ExcludeOldTransactions)
	})
	sandbox := appleServer(t, 0, &sandboxHits, nil)

	c := &AppleClient{SharedSecret: "shh", ProductionURL: prod.URL, SandboxURL: sandbox.URL, HTTP: prod.Client()}
	rec, err := c.Verify(context.Background(), "receipt")
	require.NoError(t, err)
	assert.Equal(t, int32(1), prodHits)
	assert.Equal(t, int32(0), sandboxHits)

	latest, ok := rec.LatestTransaction()
	require.True(t, ok)
	assert.Equal(t, "t2", latest.TransactionID)
	assert.Equal(t, time.UnixMilli(1800000000000).UTC(), latest.ExpiresAt())
}

func TestAppleClient_SandboxRetryOn21007(t *testing.T) {
	var prodHits, sandboxHits int32
	prod := appleServer(t, 21007, &prodHits, nil)
	sandbox := appleServer(t, 0, &sandboxHits, nil)

	c := &AppleClient{ProductionURL: prod.URL, SandboxURL: sandbox.URL}
	_, err := c.Verify(context.Background(), "receipt")
	require.NoError(t, err)
	assert.Equal(t, int32(1), prodHits)
	assert.Equal(t, int32(1), sandboxHits)
}

func TestAppleClient_InvalidStatus(t *testing.T) {
	var hits int32
	prod := appleServer(t, 21003, &hits, nil)
	c := &AppleClient{ProductionURL: prod.URL, SandboxURL: prod.URL}
	_, err := c.Verify(context.Background(), "receipt")
	assert.ErrorIs(t, err, ErrInvalidReceipt)

	_, err = c.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidReceipt)
}

func TestAppleClient_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>"))
	}))
	t.Cleanup(srv.Close)

	c := &AppleClient{ProductionURL: srv.URL, SandboxURL: srv.URL}
	_, err := c.Verify(context.Background(), "receipt")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestReceipt_Purchase(t *testing.T) {
	var rec Receipt
	rec.Receipt.InApp = []Transaction{{TransactionID: "u1", ProductID: "com.caerus.founder.5min"}}
	tx, ok := rec.Purchase("com.caerus.founder.5min")
	require.True(t, ok)
	assert.Equal(t, "u1", tx.TransactionID)

	_, ok = rec.Purchase("other")
	assert.False(t, ok)

	_, ok = rec.LatestTransaction()
	assert.False(t, ok)
}

func TestPlanForProduct(t *testing.T) {
	assert.Equal(t, "monthly", PlanForProduct("com.caerus.investor.Monthly"))
	assert.Equal(t, "annual", PlanForProduct("com.caerus.investor.yearly"))
}
