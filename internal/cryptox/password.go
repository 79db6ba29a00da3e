// Package cryptox implements account password hashing with Argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/lawhelper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize)
}

// HashPassword returns a fresh random salt and the derived hash.
func HashPassword(password string) (salt, hash []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return salt, DeriveKey(pw, salt)
}

// VerifyPassword reports whether password matches hash under salt.
// The comparison runs in constant time.
func VerifyPassword(password string, salt, hash []byte) bool {
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	got := DeriveKey(pw, salt)
	return subtle.ConstantTimeCompare(got, hash) == 1
}

var dummySalt = make([]byte, SaltSize)

// BurnPasswordCheck spends the same work as VerifyPassword so that an
// unknown email takes as long to reject as a wrong password.
func BurnPasswordCheck(password string) {
	_ = VerifyPassword(password, dummySalt, nil)
}
