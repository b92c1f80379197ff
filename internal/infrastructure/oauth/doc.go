// Package oauth implements the identity providers behind sign-in: Google
// through the OAuth2 authorization code flow, and a local dev provider that
// accepts an email address as the code.
package oauth
