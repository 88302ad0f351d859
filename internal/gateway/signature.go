package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// DefaultTolerance is how far a webhook timestamp may lag before the
// delivery is considered a replay.
const DefaultTolerance = 5 * time.Minute

// Verifier checks webhook authenticity. The gateway signs deliveries
// with "t=<unix>,v1=<hex>" where the hex digest is HMAC-SHA256 over
// "<unix>.<payload>" keyed with the shared webhook secret.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Verify checks the signature header against the raw payload. It must be
// called before the payload is parsed: payload bytes are untrusted until
// this returns nil.
func (v *Verifier) Verify(payload []byte, header string) error {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := v.now().Sub(time.Unix(timestamp, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := computeSignature(v.secret, timestamp, payload)
	if !hmac.Equal(expected, signature) {
		return ErrInvalidSignature
	}
	return nil
}

func parseSignatureHeader(header string) (int64, []byte, error) {
	var (
		timestamp int64
		signature []byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad hex digest", ErrInvalidSignature)
			}
			signature = sig
		}
	}
	if timestamp == 0 || len(signature) == 0 {
		return 0, nil, fmt.Errorf("%w: missing t or v1 component", ErrInvalidSignature)
	}
	return timestamp, signature, nil
}

func computeSignature(secret []byte, timestamp int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// Sign produces a signature header for payload at the given time. Used
// by tests and by gateway simulators.
func Sign(secret string, at time.Time, payload []byte) string {
	sig := computeSignature([]byte(secret), at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}
