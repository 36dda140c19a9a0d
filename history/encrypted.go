package history

import (
	"bufio"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const nonceSize = 12

// EncryptedStore appends one AES-256-GCM sealed line per record:
// base64(nonce || ciphertext). Transcripts are personal content, so they
// never touch disk in the clear.
type EncryptedStore struct {
	path string
	gcm  cipher.AEAD
	mu   sync.Mutex
}

// NewEncryptedStore opens the store at path with a 32-byte key.
func NewEncryptedStore(path string, key []byte) (*EncryptedStore, error) {
	if len(key) != 32 {
		return nil, errors.New("history key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	return &EncryptedStore{path: path, gcm: gcm}, nil
}

// KeyFromPassphrase derives a fixed-size key from an arbitrary secret.
func KeyFromPassphrase(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func (s *EncryptedStore) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := s.gcm.Seal(nonce, nonce, plaintext, nil)
	line := base64.StdEncoding.EncodeToString(sealed) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return err
	}
	return f.Sync()
}

func (s *EncryptedStore) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		sealed, err := base64.StdEncoding.DecodeString(line)
		if err != nil || len(sealed) < nonceSize {
			return nil, errors.New("corrupt history entry")
		}
		plaintext, err := s.gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
		if err != nil {
			return nil, fmt.Errorf("decrypt history entry: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(plaintext, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
