package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestSignAndVerify(t *testing.T) {
	auth, err := New(WithKey(testKey), WithExpired(time.Hour))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := auth.Sign(ctx, "reader-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "reader-123", claims.Subject)
	assert.Equal(t, "bookrag", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyExpiredToken(t *testing.T) {
	auth, err := New(WithKey(testKey), WithExpired(-time.Minute))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := auth.Sign(ctx, "reader-123")
	require.NoError(t, err)

	_, err = auth.Verify(ctx, token)
	assert.ErrorIs(t, err, apierrors.ErrTokenInvalid)
}

func TestVerifyWrongKey(t *testing.T) {
	signer, err := New(WithKey(testKey))
	require.NoError(t, err)
	verifier, err := New(WithKey("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := signer.Sign(ctx, "reader-123")
	require.NoError(t, err)

	_, err = verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, apierrors.ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	auth, err := New(WithKey(testKey))
	require.NoError(t, err)

	_, err = auth.Verify(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, apierrors.ErrTokenInvalid)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New(WithKey("short"))
	assert.Error(t, err)
}

func TestVerifyWrongIssuer(t *testing.T) {
	signer, err := New(WithKey(testKey), WithIssuer("someone-else"))
	require.NoError(t, err)
	verifier, err := New(WithKey(testKey))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := signer.Sign(ctx, "reader-123")
	require.NoError(t, err)

	_, err = verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, apierrors.ErrTokenInvalid)
}
