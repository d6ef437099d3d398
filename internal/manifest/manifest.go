package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"time"
)

// Suffix is appended to a backup's file name to locate its sidecar.
const Suffix = ".manifest"

type Manifest struct {
	ID          string    `json:"id"`
	Engine      string    `json:"engine"`
	DBName      string    `json:"dbname,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	Version     string    `json:"version"`
	Checksum    string    `json:"checksum,omitempty"` // SHA-256 of the stored file
	Compression string    `json:"compression,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Size        int64     `json:"size,omitempty"`
}

func New(id, engine, compression string) *Manifest {
	return &Manifest{
		ID:          id,
		Engine:      engine,
		Compression: compression,
		CreatedAt:   time.Now(),
	}
}

func (m *Manifest) Serialize() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func Deserialize(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func CalculateChecksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
