package cryptox

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"time"
)

// Reset token failure classes. A malformed token was never minted by this
// install (or was corrupted in transit); a stale one was, but has since
// expired or been superseded by a password change.
var (
	ErrResetTokenMalformed = errors.New("reset token malformed")
	ErrResetTokenStale     = errors.New("reset token stale")
	ErrResetTokenExpired   = fmt.Errorf("%w: expired", ErrResetTokenStale)
	ErrResetTokenMismatch  = fmt.Errorf("%w: credentials changed", ErrResetTokenStale)
)

var resetEncoding = base64.RawURLEncoding.Strict()

const (
	resetMACSize = sha256.Size
	resetSigSize = 2 * resetMACSize
)

// ResetClaims is the readable part of a reset token.
type ResetClaims struct {
	Email     string
	ExpiresAt time.Time
}

// ResetTokenCodec mints and checks stateless password reset tokens. A token
// is bound to the install secret and to the account's password verifier at
// the time of checking, so changing either revokes every token in flight.
type ResetTokenCodec interface {
	Issue(claims ResetClaims, secret, verifier string) string
	Parse(token string) (ResetClaims, error)
	Verify(token, secret, verifier string, now time.Time) (ResetClaims, error)
}

// HMACResetCodec is the HMAC-SHA256 ResetTokenCodec.
//
// The signature carries two tags. The bound tag covers the verifier; the seal
// covers everything else including the bound tag, so corruption is detectable
// without knowing the current verifier.
type HMACResetCodec struct{}

var _ ResetTokenCodec = HMACResetCodec{}

// Issue builds a token. Expiry is truncated to millisecond precision.
func (HMACResetCodec) Issue(claims ResetClaims, secret, verifier string) string {
	expires := claims.ExpiresAt.UnixMilli()
	bound := boundTag(secret, expires, claims.Email, verifier)
	seal := sealTag(secret, expires, claims.Email, bound)

	sig := resetEncoding.EncodeToString(append(bound, seal...))
	raw := strconv.FormatInt(expires, 10) + "|" + claims.Email + "|" + sig
	return resetEncoding.EncodeToString([]byte(raw))
}

// Parse decodes the token without checking any signature. Callers use it to
// find the account a token claims to belong to.
func (HMACResetCodec) Parse(token string) (ResetClaims, error) {
	claims, _, err := decodeReset(token)
	return claims, err
}

// Verify checks integrity, then expiry (inclusive), then the binding to the
// current verifier. Claims are returned alongside stale errors.
func (HMACResetCodec) Verify(token, secret, verifier string, now time.Time) (ResetClaims, error) {
	claims, sig, err := decodeReset(token)
	if err != nil {
		return ResetClaims{}, err
	}

	expires := claims.ExpiresAt.UnixMilli()
	bound, seal := sig[:resetMACSize], sig[resetMACSize:]

	if !hmac.Equal(seal, sealTag(secret, expires, claims.Email, bound)) {
		return ResetClaims{}, ErrResetTokenMalformed
	}
	if now.UnixMilli() > expires {
		return claims, ErrResetTokenExpired
	}
	if !hmac.Equal(bound, boundTag(secret, expires, claims.Email, verifier)) {
		return claims, ErrResetTokenMismatch
	}
	return claims, nil
}

func decodeReset(token string) (ResetClaims, []byte, error) {
	raw, err := resetEncoding.DecodeString(token)
	if err != nil {
		return ResetClaims{}, nil, fmt.Errorf("%w: encoding", ErrResetTokenMalformed)
	}

	// The email sits between the first and last separators and may itself
	// contain '|'; neither digits nor base64url do.
	first := bytes.IndexByte(raw, '|')
	last := bytes.LastIndexByte(raw, '|')
	if first <= 0 || last <= first+1 {
		return ResetClaims{}, nil, fmt.Errorf("%w: fields", ErrResetTokenMalformed)
	}

	expires, err := strconv.ParseInt(string(raw[:first]), 10, 64)
	if err != nil || expires < 0 {
		return ResetClaims{}, nil, fmt.Errorf("%w: expiry", ErrResetTokenMalformed)
	}

	sig, err := resetEncoding.DecodeString(string(raw[last+1:]))
	if err != nil || len(sig) != resetSigSize {
		return ResetClaims{}, nil, fmt.Errorf("%w: signature", ErrResetTokenMalformed)
	}

	return ResetClaims{
		Email:     string(raw[first+1 : last]),
		ExpiresAt: time.UnixMilli(expires),
	}, sig, nil
}

func boundTag(secret string, expires int64, email, verifier string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	writeInt(mac, expires)
	writeField(mac, email)
	writeField(mac, verifier)
	return mac.Sum(nil)
}

func sealTag(secret string, expires int64, email string, bound []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	writeField(mac, "seal")
	writeInt(mac, expires)
	writeField(mac, email)
	writeField(mac, string(bound))
	return mac.Sum(nil)
}

// Fields are length-prefixed so adjacent values cannot be re-split.
func writeField(h hash.Hash, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s))) // #nosec G115 - field lengths are small
	h.Write(n[:])
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(v)) // #nosec G115 - sign preserved bitwise
	h.Write(n[:])
}
