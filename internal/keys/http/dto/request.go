// Package dto provides data transfer objects for the key management endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/keyguard/internal/validation"
)

// CreateKeyRequest contains the parameters for registering a new key.
type CreateKeyRequest struct {
	Name   string `json:"name"`
	Cipher string `json:"cipher"`
	Length int    `json:"length"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Cipher, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Length, validation.Required, validation.Min(1)),
	)
}

// GenerateEEKRequest contains the parameters for encrypted key generation.
type GenerateEEKRequest struct {
	Count int `json:"count"`
}

// Validate checks if the generate request is valid.
func (r *GenerateEEKRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Count, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}

// DecryptEEKRequest contains the parameters for encrypted key decryption.
type DecryptEEKRequest struct {
	Version int `json:"version"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptEEKRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Version, validation.Required, validation.Min(1)),
	)
}
