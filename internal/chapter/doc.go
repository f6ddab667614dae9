// Package chapter runs the six-stage pipeline that turns one feed entry into
// archived artifacts: metadata, asset directory, page images, .cbz archive,
// AsciiDoc manifest, and rendered .epub.
//
// Every stage is gated on the presence of its own artifact, so re-running a
// chapter only performs the work an earlier run did not finish. Stages run in
// dependency order and any error stops the chapter (and the run).
package chapter
