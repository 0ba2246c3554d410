package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 20

var ErrPasswordMismatch = errors.New("password does not match hash")

// dummyHashes caches one throwaway hash per cost for CheckDummy.
var dummyHashes sync.Map

// PasswordHasher hashes passwords with bcrypt at a fixed cost.
type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{Cost: cost}
}

func (h PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// Check compares in constant time. A mismatch returns ErrPasswordMismatch,
// anything else (malformed or empty hash) is returned as is.
func (h PasswordHasher) Check(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// CheckDummy runs a comparison that always fails, at the hasher's cost.
// Callers use it when there is no stored hash to check against.
func (h PasswordHasher) CheckDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash(), []byte(password))
}

func (h PasswordHasher) dummyHash() []byte {
	if v, ok := dummyHashes.Load(h.Cost); ok {
		return v.([]byte)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("shopit-unused-account"), h.Cost)
	if err != nil {
		// Only reachable with an out-of-range cost; compare against garbage instead.
		return nil
	}
	v, _ := dummyHashes.LoadOrStore(h.Cost, hash)
	return v.([]byte)
}

// ResetToken is a one-shot password reset capability. Raw goes to the user,
// Hash and Expire are stored.
type ResetToken struct {
	Raw    string
	Hash   string
	Expire time.Time
}

func NewResetToken(now time.Time, ttl time.Duration) (ResetToken, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, fmt.Errorf("generate reset token: %w", err)
	}
	raw := hex.EncodeToString(b)
	return ResetToken{
		Raw:    raw,
		Hash:   HashResetToken(raw),
		Expire: now.Add(ttl),
	}, nil
}

// HashResetToken is a fast deterministic digest; the raw token is random
// enough that lookup by equality on the digest is safe.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
