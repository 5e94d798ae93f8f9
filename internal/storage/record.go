package storage

import (
	"encoding/json"

	"github.com/swissmarley/secure-snap/internal/core/domain"
)

// recordKeyPrefix namespaces message records inside the KV store.
const recordKeyPrefix = "msg:"

// record is the persisted form of a message.
type record struct {
	ID            string `json:"id"`
	Ciphertext    []byte `json:"ciphertext"`
	Salt          []byte `json:"salt"`
	IV            []byte `json:"iv"`
	CreatedAt     int64  `json:"created_at"`
	ExpirySeconds int64  `json:"expiry_seconds"`
}

func recordKey(id string) []byte {
	return append([]byte(recordKeyPrefix), id...)
}

func idFromKey(key []byte) string {
	return string(key[len(recordKeyPrefix):])
}

func encodeRecord(msg *domain.Message) ([]byte, error) {
	return json.Marshal(record{
		ID:            msg.ID,
		Ciphertext:    msg.Ciphertext,
		Salt:          msg.Salt,
		IV:            msg.IV,
		CreatedAt:     msg.CreatedAt,
		ExpirySeconds: msg.ExpirySeconds,
	})
}

func decodeRecord(data []byte) (*domain.Message, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &domain.Message{
		ID:            rec.ID,
		Ciphertext:    rec.Ciphertext,
		Salt:          rec.Salt,
		IV:            rec.IV,
		CreatedAt:     rec.CreatedAt,
		ExpirySeconds: rec.ExpirySeconds,
	}, nil
}
