// Package portfolio provides the content layer of a personal portfolio site:
// a singleton profile, an ordered collection of projects, blog posts with
// derived slugs and publication state, and substring search across both.
//
// A single Service interface applies the content policy (defaults, ordering,
// partial updates, publication transitions) on top of a pluggable Repository.
// Repository implementations (memory, Postgres, SQLite) and asset stores
// (memory, filesystem, S3) live in subpackages.
//
// Partial updates
//
// Update requests carry Optional fields with three states: unset (leave the
// stored value alone), null (clear a nullable field) and a value. Decoding a
// JSON document into an update request preserves the distinction between an
// absent key and an explicit null.
package portfolio
