package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrUnsealable is returned when a stored value cannot be authenticated
// with any of the configured keys.
var ErrUnsealable = errors.New("stored value cannot be decrypted")

// Sealed encrypts every value with fernet before handing it to the wrapped
// store. The first key encrypts; all keys are tried when decrypting so a key
// can be rotated by prepending the new one.
type Sealed struct {
	next KV
	keys []*fernet.Key
}

// NewSealed parses base64 fernet keys and wraps next.
func NewSealed(next KV, encodedKeys ...string) (*Sealed, error) {
	if len(encodedKeys) == 0 {
		return nil, errors.New("at least one key is required")
	}
	keys, err := fernet.DecodeKeys(encodedKeys...)
	if err != nil {
		return nil, fmt.Errorf("decode fernet keys: %w", err)
	}
	return &Sealed{next: next, keys: keys}, nil
}

// GenerateKey returns a new random key in its encoded form.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("generate fernet key: %w", err)
	}
	return k.Encode(), nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	tok, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	// Negative ttl disables token expiry.
	msg := fernet.VerifyAndDecrypt(tok, -1, s.keys)
	if msg == nil {
		return nil, fmt.Errorf("slot %s: %w", key, ErrUnsealable)
	}
	return msg, nil
}

func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	tok, err := fernet.EncryptAndSign(value, s.keys[0])
	if err != nil {
		return fmt.Errorf("seal slot %s: %w", key, err)
	}
	return s.next.Put(ctx, key, tok)
}

func (s *Sealed) Close() error {
	return s.next.Close()
}
