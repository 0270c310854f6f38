// Package iap verifies App Store receipts with Apple's verifyReceipt
// endpoint. Receipts are tried against production first; a 21007 status
// means a sandbox receipt and the call is repeated against the sandbox.
package iap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caerus-app/caerus-backend/internal/config"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/observability"
)

const (
	statusValid          = 0
	statusSandboxReceipt = 21007
)

var (
	// ErrInvalidReceipt is returned when Apple rejects the receipt.
	ErrInvalidReceipt = errors.New("invalid receipt")

	// ErrUpstream is returned when Apple cannot be reached or answers with
	// something other than a JSON status.
	ErrUpstream = errors.New("receipt verification unavailable")
)

// Transaction is one entry of latest_receipt_info or receipt.in_app.
// Apple encodes the numeric fields as strings.
type Transaction struct {
	TransactionID         string `json:"transaction_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	ProductID             string `json:"product_id"`
	ExpiresDateMS         string `json:"expires_date_ms"`
	PurchaseDateMS        string `json:"purchase_date_ms"`
}

// ExpiresAt parses ExpiresDateMS; the zero time means absent or malformed.
func (t Transaction) ExpiresAt() time.Time {
	return parseMillis(t.ExpiresDateMS)
}

// Receipt is the decoded verifyReceipt response for a valid receipt.
type Receipt struct {
	Status            int           `json:"status"`
	Environment       string        `json:"environment"`
	LatestReceiptInfo []Transaction `json:"latest_receipt_info"`
	Receipt           struct {
		InApp []Transaction `json:"in_app"`
	} `json:"receipt"`
}

// LatestTransaction returns the latest_receipt_info entry with the greatest
// expiry, or false when there is none.
func (r *Receipt) LatestTransaction() (Transaction, bool) {
	var (
		best  Transaction
		found bool
	)
	for _, t := range r.LatestReceiptInfo {
		if !found || t.ExpiresAt().After(best.ExpiresAt()) {
			best, found = t, true
		}
	}
	return best, found
}

// Purchase returns the in_app entry for productID, falling back to
// latest_receipt_info.
func (r *Receipt) Purchase(productID string) (Transaction, bool) {
	for _, t := range r.Receipt.InApp {
		if t.ProductID == productID {
			return t, true
		}
	}
	for _, t := range r.LatestReceiptInfo {
		if t.ProductID == productID {
			return t, true
		}
	}
	return Transaction{}, false
}

// Verifier verifies base64 receipt data.
type Verifier interface {
	Verify(ctx context.Context, receiptData string) (*Receipt, error)
}

// AppleClient talks to verifyReceipt.
type AppleClient struct {
	SharedSecret  string
	ProductionURL string
	SandboxURL    string
	HTTP          *http.Client
}

// NewAppleClient builds a client from cfg with the given request timeout.
func NewAppleClient(cfg config.AppleConfig, timeout time.Duration) *AppleClient {
	return &AppleClient{
		SharedSecret:  cfg.SharedSecret,
		ProductionURL: cfg.ProductionURL,
		SandboxURL:    cfg.SandboxURL,
		HTTP:          &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	ReceiptData            string `json:"receipt-data"`
	Password               string `json:"password,omitempty"`
	ExcludeOldTransactions bool   `json:"exclude-old-transactions"`
}

// Verify validates receiptData and returns the decoded receipt.
func (c *AppleClient) Verify(ctx context.Context, receiptData string) (*Receipt, error) {
	if strings.TrimSpace(receiptData) == "" {
		return nil, ErrInvalidReceipt
	}
	body, err := json.Marshal(verifyRequest{
		ReceiptData:            receiptData,
		Password:               c.SharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return nil, err
	}

	rec, err := c.post(ctx, c.ProductionURL, body)
	if err != nil {
		return nil, err
	}
	if rec.Status == statusSandboxReceipt {
		if rec, err = c.post(ctx, c.SandboxURL, body); err != nil {
			return nil, err
		}
	}
	if rec.Status != statusValid {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidReceipt, rec.Status)
	}
	return rec, nil
}

func (c *AppleClient) post(ctx context.Context, url string, body []byte) (rec *Receipt, err error) {
	start := time.Now()
	defer func() { observability.ObserveOutbound("apple", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var out Receipt
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return &out, nil
}

// PlanForProduct maps an App Store product id to a subscription plan.
func PlanForProduct(productID string) string {
	if strings.Contains(strings.ToLower(productID), "monthly") {
		return domain.PlanMonthly
	}
	return domain.PlanAnnual
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
