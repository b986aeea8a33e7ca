// Package ed25519 implements the identities of the ledger with Schnorr
// signatures over the Edwards 25519 curve.
//
// The text form of a public key, "schnorr:" followed by the hexadecimal point,
// is the identity naming an account.
package ed25519

import "go.dedis.ch/kyber/v3/suites"

const textPrefix = "schnorr:"

// SignatureSize is the size in bytes of a Schnorr signature of the curve.
const SignatureSize = 64

var suite = suites.MustFind("Ed25519")
