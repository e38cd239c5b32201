// Package fingerprint derives deterministic cache keys from an operation
// identity, its positional arguments, and a declared set of environment
// variable values.
//
// Two invocations with the same fingerprint are treated as cache-equivalent.
// All inputs are length-framed before hashing so that distinct argument
// splits can never collapse to the same digest input.
package fingerprint
