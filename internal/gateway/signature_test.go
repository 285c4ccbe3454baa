package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tolerance := 5 * time.Minute

	t.Run("valid signature", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now)
		assert.NoError(t, VerifyWebhookSignature(payload, header, secret, tolerance, now))
	})

	t.Run("signature from the past within tolerance", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now.Add(-4*time.Minute))
		assert.NoError(t, VerifyWebhookSignature(payload, header, secret, tolerance, now))
	})

	t.Run("expired timestamp", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now.Add(-6*time.Minute))
		err := VerifyWebhookSignature(payload, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := SignWebhookPayload(payload, "whsec_other", now)
		err := VerifyWebhookSignature(payload, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now)
		tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","amount":1}`)
		err := VerifyWebhookSignature(tampered, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("empty header", func(t *testing.T) {
		err := VerifyWebhookSignature(payload, "", secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("header without v1 entries", func(t *testing.T) {
		err := VerifyWebhookSignature(payload, "t=1234567890", secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		err := VerifyWebhookSignature(payload, "t=abc,v1=deadbeef", secret, tolerance, now)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("one bad one good v1 entry verifies", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now)
		parts := strings.SplitN(header, ",", 2)
		require.Len(t, parts, 2)
		withExtra := parts[0] + ",v1=deadbeef," + parts[1]
		assert.NoError(t, VerifyWebhookSignature(payload, withExtra, secret, tolerance, now))
	})

	t.Run("zero tolerance skips the freshness check", func(t *testing.T) {
		header := SignWebhookPayload(payload, secret, now.Add(-24*time.Hour))
		assert.NoError(t, VerifyWebhookSignature(payload, header, secret, 0, now))
	})
}
