package gateway

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_0123456789abcdef"

func newTestVerifier(now time.Time) *Verifier {
	v := NewVerifier(testSecret, DefaultTolerance)
	v.now = func() time.Time { return now }
	return v
}

func TestVerify_Success(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_succeeded","data":{"session_id":"cs_1"}}`)
	header := Sign(testSecret, now, payload)

	v := newTestVerifier(now)
	require.NoError(t, v.Verify(payload, header))
}

func TestVerify_TamperedPayload(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1","type":"payment_succeeded","data":{"session_id":"cs_1"}}`)
	header := Sign(testSecret, now, payload)

	// Flip one byte; the header stays the same.
	tampered := append([]byte(nil), payload...)
	tampered[10] ^= 0x01

	v := newTestVerifier(now)
	assert.ErrorIs(t, v.Verify(tampered, header), ErrInvalidSignature)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := Sign("whsec_some_other_secret", now, payload)

	v := newTestVerifier(now)
	assert.ErrorIs(t, v.Verify(payload, header), ErrInvalidSignature)
}

func TestVerify_StaleTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := Sign(testSecret, now.Add(-10*time.Minute), payload)

	v := newTestVerifier(now)
	assert.ErrorIs(t, v.Verify(payload, header), ErrInvalidSignature)
}

func TestVerify_FutureTimestamp(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	header := Sign(testSecret, now.Add(10*time.Minute), payload)

	v := newTestVerifier(now)
	assert.ErrorIs(t, v.Verify(payload, header), ErrInvalidSignature)
}

func TestVerify_MalformedHeader(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"id":"evt_1"}`)
	v := newTestVerifier(now)

	headers := []string{
		"",
		"garbage",
		"t=abc,v1=deadbeef",
		fmt.Sprintf("t=%d", now.Unix()),                 // missing v1
		fmt.Sprintf("t=%d,v1=not-hex", now.Unix()),      // bad hex
		fmt.Sprintf("v1=%s", strings.Repeat("ab", 32)),  // missing t
	}
	for _, header := range headers {
		assert.ErrorIs(t, v.Verify(payload, header), ErrInvalidSignature, "header %q", header)
	}
}

func TestSign_RoundTrip(t *testing.T) {
	now := time.Now()
	payload := []byte("payload bytes")

	header := Sign(testSecret, now, payload)
	assert.Contains(t, header, "t=")
	assert.Contains(t, header, "v1=")

	v := newTestVerifier(now.Add(time.Minute))
	require.NoError(t, v.Verify(payload, header))
}
