// Package auth implements local credential authentication.
//
// # Overview
//
// This package owns everything password-shaped: Argon2id hashing with the
// OWASP-recommended parameters, a configurable complexity policy whose
// violations are collected (not fail-fast) into a single PolicyError, and
// the Service that performs login, registration and password changes on top
// of the user repository.
//
// # Login symmetry
//
// Login runs exactly one hash verification whether or not the email is
// known. For an unknown email the service verifies the candidate password
// against a fixed dummy hash and discards the result, so the unknown-email
// and wrong-password paths cost the same and both surface
// ErrInvalidCredentials.
//
// # Key Components
//
// Hashing:
//
//	hasher := auth.NewArgon2Hasher()
//	encoded, err := hasher.Hash("hunter2!A")
//	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//	ok := hasher.Verify("hunter2!A", encoded)
//
// Policy:
//
//	validator := auth.NewPolicyValidator()
//	err := validator.Validate("short")
//	var policyErr *auth.PolicyError
//	errors.As(err, &policyErr) // policyErr.Codes lists every unmet rule
//
// Service:
//
//	svc := auth.NewService(repo, hasher, validator, logger)
//	u, err := svc.Login(ctx, "alice@example.com", "hunter2!A")
//
// # Related Packages
//
//   - pkg/user: account model and repository
//   - pkg/oidc: federated login
//   - pkg/session: session identity storage
package auth
