// Package application implements the brief use cases: authoring
// questionnaires, keeping their revision history, YAML interchange and
// collecting client responses.
//
// Freelancers only reach their own briefs. A client may open and answer a
// brief when the brief's owner has a client record with the client's email.
package application
