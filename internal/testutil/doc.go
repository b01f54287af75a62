// Package testutil holds helpers shared by adapter tests.
package testutil
