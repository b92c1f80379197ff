// Package application implements the project use cases: creating projects
// and deliverables, uploading versions, client review and the comment
// thread on each version.
//
// # Access
//
// Every operation takes the acting profile. Freelancers act on the projects
// they own; clients act on the projects whose client record carries their
// email. A project the viewer cannot see is reported as not found so its
// existence never leaks.
//
// # Ports
//
// Persistence goes through the domain ProjectRepository and
// ClientRepository. Uploaded files go through FileStore, implemented by
// internal/infrastructure/storage.
package application
