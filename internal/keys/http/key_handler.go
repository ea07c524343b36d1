// Package http provides the key management endpoints. Every route runs behind
// the principal middleware; the use case layer makes the access decision.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedHTTP "github.com/allisson/keyguard/internal/http"
	"github.com/allisson/keyguard/internal/httputil"
	"github.com/allisson/keyguard/internal/keys/http/dto"
	keysUseCase "github.com/allisson/keyguard/internal/keys/usecase"
	customValidation "github.com/allisson/keyguard/internal/validation"
)

// KeyHandler handles HTTP requests for key management operations.
type KeyHandler struct {
	keyUseCase keysUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(keyUseCase keysUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// RegisterRoutes mounts the key management routes on the group.
func (h *KeyHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.Use(sharedHTTP.PrincipalMiddleware())
	group.POST("", h.CreateKeyHandler)
	group.GET("", h.ListKeyNamesHandler)
	group.GET("/:name/metadata", h.GetKeyMetadataHandler)
	group.POST("/:name/rollover", h.RolloverKeyHandler)
	group.POST("/:name/eek", h.GenerateEEKHandler)
	group.POST("/:name/eek/decrypt", h.DecryptEEKHandler)
	group.DELETE("/:name", h.DeleteKeyHandler)
}

// CreateKeyHandler registers new key metadata.
// POST /v1/keys - Requires the CREATE grant.
func (h *KeyHandler) CreateKeyHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.keyUseCase.Create(c.Request.Context(), principal, keysUseCase.CreateKeyInput{
		Name:   req.Name,
		Cipher: req.Cipher,
		Length: req.Length,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyToResponse(key))
}

// ListKeyNamesHandler returns all key names.
// GET /v1/keys - Requires the GET_KEYS grant.
func (h *KeyHandler) ListKeyNamesHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	names, err := h.keyUseCase.ListNames(c.Request.Context(), principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.KeyNamesResponse{Names: names})
}

// GetKeyMetadataHandler returns the metadata of a single key.
// GET /v1/keys/:name/metadata - Requires the GET_METADATA grant.
func (h *KeyHandler) GetKeyMetadataHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	key, err := h.keyUseCase.GetMetadata(c.Request.Context(), principal, c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// RolloverKeyHandler increments the key version.
// POST /v1/keys/:name/rollover - Requires the ROLLOVER grant.
func (h *KeyHandler) RolloverKeyHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	key, err := h.keyUseCase.Rollover(c.Request.Context(), principal, c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyToResponse(key))
}

// GenerateEEKHandler authorizes encrypted key generation.
// POST /v1/keys/:name/eek - Requires the GENERATE_EEK grant.
func (h *KeyHandler) GenerateEEKHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	var req dto.GenerateEEKRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.keyUseCase.GenerateEEK(c.Request.Context(), principal, c.Param("name"), req.Count)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

// DecryptEEKHandler authorizes encrypted key decryption.
// POST /v1/keys/:name/eek/decrypt - Requires the DECRYPT_EEK grant.
func (h *KeyHandler) DecryptEEKHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	var req dto.DecryptEEKRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.keyUseCase.DecryptEEK(c.Request.Context(), principal, c.Param("name"), req.Version)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

// DeleteKeyHandler removes key metadata.
// DELETE /v1/keys/:name - Requires the DELETE grant.
func (h *KeyHandler) DeleteKeyHandler(c *gin.Context) {
	principal, _ := sharedHTTP.GetPrincipal(c)

	if err := h.keyUseCase.Delete(c.Request.Context(), principal, c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
