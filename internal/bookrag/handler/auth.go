package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/pkg/security/auth/jwt"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// subjectKey is the gin context key holding the authenticated subject.
const subjectKey = "auth.subject"

// AuthHandler issues API tokens.
type AuthHandler struct {
	signer *jwt.JWT
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(signer *jwt.JWT) *AuthHandler {
	return &AuthHandler{signer: signer}
}

// TokenRequest asks for an API token.
type TokenRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// TokenResponse carries an issued token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token issues a bearer token for a subject. The endpoint is only
// mounted when authentication is enabled; keep it behind a trusted
// network or gateway.
//
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	token, err := h.signer.Sign(c.Request.Context(), req.Subject)
	if err != nil {
		writeError(c, apierrors.ErrInternal.WithMessage("failed to sign token").WithCause(err))
		return
	}

	writeSuccess(c, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.signer.Expired()),
	})
}

// AuthMiddleware verifies the Authorization bearer token and stores the
// subject on the request context.
func AuthMiddleware(verifier *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, apierrors.ErrUnauthorized.WithMessage("missing bearer token"))
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}

// Subject returns the authenticated subject, if any.
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
