// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, stub converter binaries on PATH, and an in-process fake of the
// MangaDex endpoints.
package testsupport
