// Package testutil holds fakes shared by package tests. FakeRunner stands
// in for the host so tests never touch real package managers.
package testutil
