// Package archiver orchestrates a full run for one collection: list every feed
// page, select matching chapters, and process them oldest first through the
// chapter pipeline.
//
// Runs are strictly sequential. The first error ends the run; everything
// produced before it stays on disk so the next invocation resumes where this
// one stopped.
package archiver
