package cryptox

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"
	testVerifier = "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHQ$aGFzaGhhc2g"
)

func issueAt(t *testing.T, email string, expires time.Time) string {
	t.Helper()
	return HMACResetCodec{}.Issue(ResetClaims{Email: email, ExpiresAt: expires}, testSecret, testVerifier)
}

func TestResetToken_RoundTrip(t *testing.T) {
	codec := HMACResetCodec{}
	now := time.Now()
	expires := now.Add(time.Hour)

	token := issueAt(t, "jbloggs@example.com", expires)
	require.NotContains(t, token, "|")

	claims, err := codec.Verify(token, testSecret, testVerifier, now)
	require.NoError(t, err)
	require.Equal(t, "jbloggs@example.com", claims.Email)
	require.Equal(t, expires.UnixMilli(), claims.ExpiresAt.UnixMilli())

	parsed, err := codec.Parse(token)
	require.NoError(t, err)
	require.Equal(t, claims, parsed)
}

func TestResetToken_Deterministic(t *testing.T) {
	expires := time.UnixMilli(1_700_000_000_000)
	require.Equal(t, issueAt(t, "a@example.com", expires), issueAt(t, "a@example.com", expires))
}

func TestResetToken_EmailWithSeparator(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "odd|name@example.com", now.Add(time.Minute))

	claims, err := HMACResetCodec{}.Verify(token, testSecret, testVerifier, now)
	require.NoError(t, err)
	require.Equal(t, "odd|name@example.com", claims.Email)
}

func TestResetToken_ExpiryBoundaryInclusive(t *testing.T) {
	codec := HMACResetCodec{}
	expires := time.UnixMilli(1_700_000_000_000)
	token := issueAt(t, "a@example.com", expires)

	_, err := codec.Verify(token, testSecret, testVerifier, expires)
	require.NoError(t, err, "now == expiresAt is still valid")

	_, err = codec.Verify(token, testSecret, testVerifier, expires.Add(time.Millisecond))
	require.ErrorIs(t, err, ErrResetTokenExpired)
	require.ErrorIs(t, err, ErrResetTokenStale)
}

func TestResetToken_ExpiredInPast(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "a@example.com", now.Add(-time.Minute))

	claims, err := HMACResetCodec{}.Verify(token, testSecret, testVerifier, now)
	require.ErrorIs(t, err, ErrResetTokenExpired)
	require.ErrorIs(t, err, ErrResetTokenStale)
	require.NotErrorIs(t, err, ErrResetTokenMalformed)
	require.Equal(t, "a@example.com", claims.Email)
}

func TestResetToken_VerifierChanged(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "a@example.com", now.Add(time.Hour))

	_, err := HMACResetCodec{}.Verify(token, testSecret, "$argon2id$v=19$other", now)
	require.ErrorIs(t, err, ErrResetTokenMismatch)
	require.ErrorIs(t, err, ErrResetTokenStale)
	require.NotErrorIs(t, err, ErrResetTokenMalformed)
}

func TestResetToken_RotatedSecret(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "a@example.com", now.Add(time.Hour))

	_, err := HMACResetCodec{}.Verify(token, "rotated", testVerifier, now)
	require.ErrorIs(t, err, ErrResetTokenMalformed)
}

func TestResetToken_SignatureByteAlteration(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "a@example.com", now.Add(time.Hour))

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	sigStart := strings.LastIndexByte(string(raw), '|') + 1

	for i := sigStart; i < len(raw); i++ {
		altered := []byte(string(raw))
		if altered[i] == 'A' {
			altered[i] = 'B'
		} else {
			altered[i] = 'A'
		}
		tampered := base64.RawURLEncoding.EncodeToString(altered)

		_, err := HMACResetCodec{}.Verify(tampered, testSecret, testVerifier, now)
		require.ErrorIs(t, err, ErrResetTokenMalformed, "byte %d", i)
		require.NotErrorIs(t, err, ErrResetTokenStale, "byte %d", i)
	}
}

func TestResetToken_TamperedExpiryIsMalformed(t *testing.T) {
	now := time.Now()
	token := issueAt(t, "a@example.com", now.Add(-time.Hour))

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	parts := strings.SplitN(string(raw), "|", 2)
	forged := base64.RawURLEncoding.EncodeToString([]byte("9999999999999|" + parts[1]))

	_, err = HMACResetCodec{}.Verify(forged, testSecret, testVerifier, now)
	require.ErrorIs(t, err, ErrResetTokenMalformed)
}

func TestResetToken_Malformed(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"literal invalid", "invalid"},
		{"not base64", "!!!!"},
		{"one field", enc([]byte("1700000000000"))},
		{"two fields", enc([]byte("1700000000000|a@example.com"))},
		{"empty email", enc([]byte("1700000000000||c2ln"))},
		{"non numeric expiry", enc([]byte("soon|a@example.com|c2ln"))},
		{"short signature", enc([]byte("1700000000000|a@example.com|c2ln"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HMACResetCodec{}.Parse(tt.token)
			require.ErrorIs(t, err, ErrResetTokenMalformed)

			_, err = HMACResetCodec{}.Verify(tt.token, testSecret, testVerifier, time.Now())
			require.ErrorIs(t, err, ErrResetTokenMalformed)
		})
	}
}
