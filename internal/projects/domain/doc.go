// Package domain holds projects, their deliverables, and the version review
// workflow between a freelancer and a client.
package domain
