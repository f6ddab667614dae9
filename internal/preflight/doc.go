// Package preflight provides readiness checks for the directories and
// external programs mangarchive depends on.
//
// The doctor command runs RunAll and, unless told to stay offline, CheckAPI.
// Checks never modify anything on disk.
package preflight
