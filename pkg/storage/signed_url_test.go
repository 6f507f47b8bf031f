package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("rep-1", "range/rep-1.pdf")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	reportID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "rep-1", reportID)
	assert.Equal(t, "range/rep-1.pdf", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("rep-1", "range/rep-1.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("different", time.Minute)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	short := &SignedURLSigner{secret: []byte("secret"), ttl: time.Nanosecond}
	token, _, err := short.Generate("rep-1", "day/rep-1.csv")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, _, _, err = short.Parse(token, false)
	assert.Error(t, err)

	_, relPath, _, err := short.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "day/rep-1.csv", relPath)
}
