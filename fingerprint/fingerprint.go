package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"regexp"
)

// EnvValue is one environment variable captured at call time.
//
// The cache key depends on explicit (name, value) pairs rather than ambient
// lookups scattered through key derivation; an absent variable is captured
// with an empty value.
type EnvValue struct {
	Name  string
	Value string
}

// CaptureEnv resolves the named environment variables to their current
// values. Absent variables resolve to the empty string.
func CaptureEnv(names []string) []EnvValue {
	if len(names) == 0 {
		return nil
	}
	vals := make([]EnvValue, len(names))
	for i, name := range names {
		vals[i] = EnvValue{Name: name, Value: os.Getenv(name)}
	}
	return vals
}

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateEnvName checks that name is a syntactically legal environment
// variable identifier.
func ValidateEnvName(name string) error {
	if !envNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidEnvName, name)
	}
	return nil
}

// Fingerprinter derives cache fingerprints.
//
// Contract:
// - Determinism: identical (op, args, env) must produce identical fingerprints.
// - Concurrency: implementations must be safe for concurrent use.
// - Purity: no side effects; the environment is supplied, not read.
type Fingerprinter interface {
	// Fingerprint returns a fixed-length hex-encoded key for the invocation.
	Fingerprint(op string, args []string, env []EnvValue) (string, error)
}

// SHA256Fingerprinter is the default, collision-resistant fingerprinter.
type SHA256Fingerprinter struct{}

// NewSHA256 creates the default SHA-256 fingerprinter.
func NewSHA256() *SHA256Fingerprinter {
	return &SHA256Fingerprinter{}
}

// Fingerprint derives a SHA-256 fingerprint over the length-framed inputs.
func (f *SHA256Fingerprinter) Fingerprint(op string, args []string, env []EnvValue) (string, error) {
	return digest(sha256.New(), op, args, env)
}

// FNVFingerprinter is a weaker fallback for environments where a
// cryptographic hash is undesirable. It is NOT collision-resistant: an
// adversarial or merely unlucky pair of inputs may share a fingerprint and
// be served each other's cached results.
type FNVFingerprinter struct{}

// NewFNV creates the fallback FNV-1a fingerprinter.
func NewFNV() *FNVFingerprinter {
	return &FNVFingerprinter{}
}

// Fingerprint derives an FNV-1a fingerprint over the length-framed inputs.
func (f *FNVFingerprinter) Fingerprint(op string, args []string, env []EnvValue) (string, error) {
	return digest(fnv.New128a(), op, args, env)
}

// digest feeds op, args, and env into h with an 8-byte big-endian length
// prefix before every field and a NUL between sections. Length framing makes
// the encoding injective: ["a","b"] and ["a b"] produce different inputs.
func digest(h hash.Hash, op string, args []string, env []EnvValue) (string, error) {
	if op == "" {
		return "", ErrEmptyOp
	}

	writeField := func(s string) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(s)))
		h.Write(length[:])
		h.Write([]byte(s))
	}

	writeField(op)
	h.Write([]byte{0})
	for _, a := range args {
		writeField(a)
	}
	h.Write([]byte{0})
	for _, e := range env {
		writeField(e.Name)
		writeField(e.Value)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Interface compile checks.
var (
	_ Fingerprinter = (*SHA256Fingerprinter)(nil)
	_ Fingerprinter = (*FNVFingerprinter)(nil)
)
