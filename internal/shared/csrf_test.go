package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/shared"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "abc"}

	token := m.TokenFor(sess)
	require.NotEmpty(t, token)
	assert.Equal(t, token, m.TokenFor(sess), "token stable within a session")
	assert.NoError(t, m.Verify(sess, token))
}

func TestCSRFVerifyRejectsBadToken(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "abc"}
	token := m.TokenFor(sess)

	assert.ErrorIs(t, m.Verify(sess, ""), shared.ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.Verify(sess, token+"x"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.Verify(nil, token), shared.ErrCSRFTokenMissing)
}

func TestCSRFVerifyNeedsIssuedToken(t *testing.T) {
	m := shared.NewCSRFManager("csrfsecret")
	// Session that never had a token issued.
	assert.ErrorIs(t, m.Verify(&shared.Session{ID: "abc"}, "anything"), shared.ErrCSRFTokenMissing)
}
