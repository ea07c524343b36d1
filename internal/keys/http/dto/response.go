package dto

import (
	"time"

	keysDomain "github.com/allisson/keyguard/internal/keys/domain"
)

// KeyResponse represents key metadata in API responses.
type KeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cipher    string    `json:"cipher"`
	Length    int       `json:"length"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapKeyToResponse converts a domain key to its response representation.
func MapKeyToResponse(key *keysDomain.Key) KeyResponse {
	return KeyResponse{
		ID:        key.ID.String(),
		Name:      key.Name,
		Cipher:    key.Cipher,
		Length:    key.Length,
		Version:   key.Version,
		CreatedAt: key.CreatedAt,
		UpdatedAt: key.UpdatedAt,
	}
}

// KeyNamesResponse lists the names of all managed keys.
type KeyNamesResponse struct {
	Names []string `json:"names"`
}

// EEKGrantResponse acknowledges an authorized encrypted-key operation.
type EEKGrantResponse struct {
	KeyName    string    `json:"key_name"`
	KeyVersion int       `json:"key_version"`
	Count      int       `json:"count"`
	IssuedAt   time.Time `json:"issued_at"`
}

// MapGrantToResponse converts a domain grant to its response representation.
func MapGrantToResponse(grant *keysDomain.EEKGrant) EEKGrantResponse {
	return EEKGrantResponse{
		KeyName:    grant.KeyName,
		KeyVersion: grant.KeyVersion,
		Count:      grant.Count,
		IssuedAt:   grant.IssuedAt,
	}
}
