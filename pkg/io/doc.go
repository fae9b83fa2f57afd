// Package io reads and writes class declarations and linearization results.
//
// # Declaration files
//
// A declaration file lists classes with their direct bases in declared order
// and, optionally, the members each class defines itself. JSON:
//
//	{
//	  "classes": [
//	    {"id": "A", "members": {"m": "A.m"}},
//	    {"id": "B", "bases": ["A"]},
//	    {"id": "C", "bases": ["A"], "members": {"m": "C.m"}},
//	    {"id": "D", "bases": ["B", "C"]}
//	  ]
//	}
//
// TOML, one [[class]] table per class:
//
//	[[class]]
//	id = "A"
//	members = { m = "A.m" }
//
//	[[class]]
//	id = "D"
//	bases = ["B", "C"]
//
// Member values are opaque definition handles; they are reported back by
// resolution but never interpreted. Unknown fields are rejected in both
// formats.
//
// The file format is chosen from the extension by [ImportFile]; use
// [ReadDecls] for streams.
//
// # Results
//
// [WriteResults] encodes a [ResultSet] as indented JSON. Failed classes
// carry a diagnostic report instead of an order.
package io
