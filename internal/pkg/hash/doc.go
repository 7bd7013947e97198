// Package hash provides keyed digests.
//
// The HMAC-SHA256 implementation derives stable, non-reversible lookup keys
// from identities so that stores never hold the raw identity.
package hash
