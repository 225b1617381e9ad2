package domain

import (
	"encoding/hex"
	"strings"
	"time"

	dErrors "certledger/pkg/domain-errors"
)

// Role classifies an account for authorization checks. The wire encoding is
// numeric (0=Student, 1=Teacher) to stay compatible with callers of the
// original contract ABI; Admin is reserved for future privileged tooling.
type Role int

const (
	RoleStudent Role = iota
	RoleTeacher
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// ParseRole accepts both role names and the numeric wire form.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "0":
		return RoleStudent, nil
	case "teacher", "1":
		return RoleTeacher, nil
	case "admin", "2":
		return RoleAdmin, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
}

// CommitmentSize is the fixed length of a credential commitment in bytes.
// The original system stored keccak256(secret); the registry treats the
// digest as opaque and only ever compares it for byte equality.
const CommitmentSize = 32

// Commitment is the stored one-way hash of a login secret. The secret itself
// never reaches this system.
type Commitment [CommitmentSize]byte

// ParseCommitment decodes a hex-encoded commitment, with or without an 0x
// prefix. Anything that is not exactly CommitmentSize bytes is rejected.
func ParseCommitment(s string) (Commitment, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Commitment{}, dErrors.New(dErrors.CodeInvalidInput, "commitment is not valid hex")
	}
	if len(raw) != CommitmentSize {
		return Commitment{}, dErrors.New(dErrors.CodeInvalidInput, "commitment must be 32 bytes")
	}
	var c Commitment
	copy(c[:], raw)
	return c, nil
}

func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// Account is the registry record for one identity. Identity is the primary
// key and immutable once created; absence of an Account is a distinct state
// from an Account with zero-value fields, which is why stores signal misses
// with CodeNotRegistered instead of returning empty records.
type Account struct {
	Identity     string
	DisplayName  string
	Commitment   Commitment
	Role         Role
	RegisteredBy string
	RegisteredAt time.Time
}
