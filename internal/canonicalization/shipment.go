// Package canonicalization provides canonical shipment identifier generation
// for cross-feed record linkage.
//
// The three logistics feeds represent the same shipment number with different
// textual/numeric formatting: the yard system exports plain integers, the
// appointment view adds thousands separators, and spreadsheet round-trips
// through the order view leave a trailing fractional zero ("4500123876.0").
// Without canonicalization these all look like distinct shipments and the
// three-way join silently produces no matches.
//
// This package provides pure utility functions operating on raw strings so
// every feed applies identical cleanup at the join boundary, rather than each
// query doing ad hoc string surgery.
package canonicalization

import "strings"

// groupingSeparators are characters upstream systems insert into shipment
// numbers for display purposes. All are stripped during canonicalization.
const groupingSeparators = ", _"

// ShipmentID normalizes a raw shipment identifier into its canonical form.
//
// Normalization rules, applied in order:
//  1. Surrounding whitespace is trimmed.
//  2. Grouping separators (comma, space, underscore) are removed.
//  3. A fractional suffix consisting only of zeros is stripped
//     ("4500123876.0" and "4500123876.000" both become "4500123876").
//     A non-zero fraction is preserved: it is not a formatting artifact.
//  4. Remaining leading zeros are preserved; some sites issue identifiers
//     with significant zero padding.
//
// Same input always produces the same output, and an empty or
// whitespace-only input canonicalizes to "" (meaning: no identifier).
//
// Examples:
//   - ShipmentID(" 4500123876 ") → "4500123876"
//   - ShipmentID("4,500,123,876") → "4500123876"
//   - ShipmentID("4500123876.0") → "4500123876"
//   - ShipmentID("4500123876.5") → "4500123876.5"
func ShipmentID(raw string) string {
	canonical := strings.TrimSpace(raw)

	for _, sep := range groupingSeparators {
		canonical = strings.ReplaceAll(canonical, string(sep), "")
	}

	canonical = stripZeroFraction(canonical)

	return canonical
}

// stripZeroFraction removes a "." followed only by zeros from the end of id.
// Values without a dot, or with a non-zero fraction, pass through unchanged.
func stripZeroFraction(id string) string {
	dot := strings.LastIndex(id, ".")
	if dot == -1 {
		return id
	}

	fraction := id[dot+1:]
	if fraction == "" {
		return id[:dot]
	}

	for _, r := range fraction {
		if r != '0' {
			return id
		}
	}

	return id[:dot]
}

// SameShipment reports whether two raw identifiers refer to the same shipment
// after canonicalization. Two empty identifiers never match: an absent key
// must not join records.
func SameShipment(a, b string) bool {
	ca, cb := ShipmentID(a), ShipmentID(b)

	return ca != "" && ca == cb
}
