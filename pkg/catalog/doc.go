// Package catalog holds the lookup tables behind robot specification codes.
//
// A Catalog groups five tables:
//
//   - Robot types, robot variants (robot names) and grippers are coded
//     tables: ordered (name, code) entries where each code is a non-zero
//     16-bit value, unique across all three tables.
//   - Protocols and addons are flag tables: ordered name lists of at most
//     16 entries. The position of a name in the list is its bit position in
//     the encoded mask, counted from the most significant bit.
//
// Both lookup directions (name to code, code to name) are precomputed from
// the same ordered slice when the catalog is built, so they cannot drift
// apart. A Catalog is immutable after construction and safe for concurrent
// use; accessors return copies.
//
// # Families
//
// Robot types optionally list the variants that belong to them. Families
// drive variant filtering in interactive tools and produce warnings in
// reports; they are not part of the binary format.
//
// # YAML Format
//
//	name: default
//	robot_types:
//	  - name: Iontec
//	    code: 1
//	    variants: ["KR 20 R3100 Iontec", "KR 30 R2100 Iontec"]
//	variants:
//	  - {name: "KR 20 R3100 Iontec", code: 23}
//	grippers:
//	  - {name: Hydraulic, code: 65}
//	protocols: [WIFI, EtherCAT]
//	addons: [Conveyor Belt, FSD]
//
// Use [Default] for the embedded catalog and [LoadFile] or [Parse] for
// custom ones.
package catalog
