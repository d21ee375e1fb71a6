// Package secret verifies and hashes operator till secrets.
//
// The stored value carries its own scheme: bcrypt hashes start with $2a$,
// $2b$ or $2y$, argon2id hashes with $argon2id$. Anything else is a legacy
// plaintext secret, still accepted so existing operators keep working and
// upgraded to bcrypt after the next successful check.
package secret

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for newly hashed secrets.
const BcryptCost = 12

// Scheme identifies how a stored secret is encoded.
type Scheme string

const (
	SchemeBcrypt    Scheme = "bcrypt"
	SchemeArgon2id  Scheme = "argon2id"
	SchemePlaintext Scheme = "plaintext"
)

// Verifier compares a presented secret with a stored one.
type Verifier interface {
	Verify(presented, stored string) (bool, error)
}

// SchemeOf inspects the stored value's prefix.
func SchemeOf(stored string) Scheme {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(stored, "$argon2id$"):
		return SchemeArgon2id
	default:
		return SchemePlaintext
	}
}

// For returns the verifier matching the stored value.
func For(stored string) Verifier {
	switch SchemeOf(stored) {
	case SchemeBcrypt:
		return bcryptVerifier{}
	case SchemeArgon2id:
		return argon2Verifier{}
	default:
		return plaintextVerifier{}
	}
}

// Verify checks presented against stored using the stored scheme.
func Verify(presented, stored string) (bool, error) {
	if stored == "" {
		return false, nil
	}
	return For(stored).Verify(presented, stored)
}

// NeedsRehash reports whether stored should be replaced by a fresh hash.
func NeedsRehash(stored string) bool {
	return SchemeOf(stored) == SchemePlaintext
}

// Hash derives a bcrypt hash for a new secret.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("segredo vazio")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

var argonParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashArgon2id derives an argon2id hash. Kept for secrets provisioned by
// tooling that standardizes on argon2id.
func HashArgon2id(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("segredo vazio")
	}
	return argon2id.CreateHash(plain, argonParams)
}

type bcryptVerifier struct{}

func (bcryptVerifier) Verify(presented, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return err == nil, err
}

type argon2Verifier struct{}

func (argon2Verifier) Verify(presented, stored string) (bool, error) {
	return argon2id.ComparePasswordAndHash(presented, stored)
}

type plaintextVerifier struct{}

func (plaintextVerifier) Verify(presented, stored string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1, nil
}
