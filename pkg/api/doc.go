// Package api is the HTTP surface of the service.
//
// # Overview
//
// Handlers translate between JSON requests and the domain services, and
// map domain errors onto the uniform problem-detail shape of
// pkg/httputil. Authorization is cookie-session based: middleware
// re-resolves the account from the user repository on every protected
// request, so a stale session never serves stale identity.
//
// # Key Components
//
//   - Server: route table and middleware wiring on gorilla/mux
//   - RequireAuth / RequireGuest: identity guards
//   - install-status guards: setup-wizard routes are only reachable
//     while the instance is not installed, everything else only after
package api
