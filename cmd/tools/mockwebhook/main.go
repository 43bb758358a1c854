package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type callbackPayload struct {
	ExternalID     string `json:"external_id"`
	ID             string `json:"id"`
	Status         string `json:"status"`
	PaidAt         string `json:"paid_at,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentChannel string `json:"payment_channel,omitempty"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/payments", "Webhook URL")
	secret := flag.String("secret", os.Getenv("GATEWAY_CALLBACK_SECRET"), "Callback secret")
	externalID := flag.String("external-id", "", "Payment external_id (required)")
	invoiceID := flag.String("invoice-id", "inv_"+randomHex(8), "Gateway invoice id")
	status := flag.String("status", "PAID", "Status (PAID, EXPIRED, FAILED)")
	method := flag.String("method", "BANK_TRANSFER", "Payment method (for PAID)")
	channel := flag.String("channel", "BCA", "Payment channel (for PAID)")
	failureCode := flag.String("failure-code", "", "Failure code (for FAILED)")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and GATEWAY_CALLBACK_SECRET not set\n")
		os.Exit(1)
	}
	if *externalID == "" {
		fmt.Fprintf(os.Stderr, "Error: -external-id is required\n")
		os.Exit(1)
	}

	payload := callbackPayload{
		ExternalID: *externalID,
		ID:         *invoiceID,
		Status:     *status,
	}
	switch *status {
	case "PAID":
		payload.PaidAt = time.Now().UTC().Format(time.RFC3339)
		payload.PaymentMethod = *method
		payload.PaymentChannel = *channel
	case "FAILED":
		payload.FailureCode = *failureCode
		payload.FailureMessage = "mock failure"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	// hex HMAC-SHA256 over the exact bytes we send
	sig := computeSig([]byte(*secret), body)

	fmt.Printf("X-Callback-Signature: %s\n", sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Callback-Signature", sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func computeSig(secret, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)[:n]
}
