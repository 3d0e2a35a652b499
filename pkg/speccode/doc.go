// Package speccode encodes robot specifications into fixed-width codes and
// decodes them back.
//
// # Code Layout
//
// A Code is an 80-bit unsigned integer made of five 16-bit fields,
// most significant first:
//
//	bits  0-15  robot type code
//	bits 16-31  robot variant code
//	bits 32-47  gripper code
//	bits 48-63  protocol mask
//	bits 64-79  addon mask
//
// The first three fields hold the catalog code of a single entry. The masks
// carry one bit per catalog entry: the first declared protocol is the most
// significant bit of the protocol mask, the sixteenth is the least.
//
// Codes are exchanged as hexadecimal without fixed padding. Decoding accepts
// an optional 0x prefix and fewer than 20 digits; missing high digits are zero.
//
// # Errors
//
// Every rejection wraps one of ErrUnknownAttribute, ErrMalformedHex,
// ErrOutOfRange, ErrEmptySet or ErrIncompleteSelection. Use errors.Is or
// KindOf to classify them. Decoding is exact: a field that does not match a
// catalog entry is never substituted.
//
// # Concurrency
//
// A Codec holds only an immutable catalog and an optional trace logger, so
// Encode and Decode may be called from any number of goroutines.
package speccode
