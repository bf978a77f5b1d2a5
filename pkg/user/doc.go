// Package user defines the identity model: validated email/username value
// types, the User entity, and the persistence port backed by PostgreSQL.
//
// Users come from two providers: "local" accounts carry an Argon2 password
// hash, "oidc" accounts are linked to a federated subject and may have no
// hash at all. The repository enforces uniqueness on both username and
// email and maps driver-level errors to the package sentinels so callers
// only ever branch on ErrNotFound and ErrAlreadyExists.
package user
