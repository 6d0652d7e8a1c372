// Package enrich runs the fact extraction stage over the stored document
// backlog.
//
// The Pipeline reads products that have a stored primary document but no
// fact record yet, converts each document to plain text, asks the fact
// extraction service to fill the field schema, and persists the result.
// Re-running the stage is always safe: only the backlog is processed.
package enrich
