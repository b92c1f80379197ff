// Package auth signs users in through an identity provider, keeps their
// sessions and guards routes by role.
//
// # Sessions
//
// A session is a random opaque token held in an HttpOnly cookie. Only the
// BLAKE2b-256 hash of the token is stored, so a leaked database cannot be
// replayed. Lookups are cached in-process for a short TTL and evicted on
// logout.
//
// # Routing
//
// Guard.Pages applies the page rules: the /dashboard, /client and /setup
// areas need a session, each area needs its role, and signed-in users
// visiting /login or /signup go straight to their home. Guard.Require
// protects API handlers, answering 401 without a session and 403 for the
// wrong role.
package auth
