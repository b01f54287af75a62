// Package normalisers holds the decoders that turn raw gateway response
// bodies into domain types. The responses package is the only one.
package normalisers
