// Package notifications delivers run milestones via ntfy.
//
// The default implementation publishes to the topic configured under
// [notifications] and degrades to a no-op when no topic is set. Callers treat
// delivery failures as warnings; a notification never decides the outcome of
// a run.
package notifications
