package models

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into one-way digests.
type PasswordHasher interface {
	Name() string
	Hash(plain string) (string, error)
	// IsHash reports whether s already is a digest produced by this hasher.
	IsHash(s string) bool
	// Compare returns nil when plain matches digest.
	Compare(digest, plain string) error
}

// ErrPasswordMismatch is returned by Compare on a wrong password.
var ErrPasswordMismatch = bcrypt.ErrMismatchedHashAndPassword

// BcryptHasher is the default, salted and deliberately slow.
type BcryptHasher struct {
	// Cost defaults to bcrypt.DefaultCost.
	Cost int
}

func (BcryptHasher) Name() string { return "bcrypt" }

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (BcryptHasher) IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func (BcryptHasher) Compare(digest, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
}

// MD5Hasher reproduces the unsalted hex MD5 digests of existing data sets.
// It is only meant for reading and writing such legacy data.
type MD5Hasher struct{}

func (MD5Hasher) Name() string { return "md5" }

func (MD5Hasher) Hash(plain string) (string, error) {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (MD5Hasher) IsHash(s string) bool {
	if len(s) != md5.Size*2 {
		return false
	}
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

func (h MD5Hasher) Compare(digest, plain string) error {
	sum, _ := h.Hash(plain)
	if subtle.ConstantTimeCompare([]byte(sum), []byte(digest)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// ParseHasher returns the hasher called name; the empty name selects bcrypt.
func ParseHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "bcrypt":
		return BcryptHasher{}, nil
	case "md5":
		return MD5Hasher{}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}

// CheckPassword reports whether plain is the user's password.
func (u *User) CheckPassword(h PasswordHasher, plain string) bool {
	return u.Password != "" && h.Compare(u.Password, plain) == nil
}

// SetPassword replaces the password with the digest of plain.
func (u *User) SetPassword(h PasswordHasher, plain string) error {
	digest, err := h.Hash(plain)
	if err != nil {
		return err
	}
	u.Password = digest
	return nil
}
