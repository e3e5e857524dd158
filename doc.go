// Package main starts the point-of-sale back office.
//
// The back office is a Fiber web service backed by gorm. It manages user
// accounts and their roles, the permissions granted to each role, and the
// menu sections every role sees. Access checks are resolved from the store
// on every request, so a changed grant applies to the next click.
//
// Run "pos-backoffice migrate" once to create the schema and the initial
// admin account, then "pos-backoffice start".
package main
