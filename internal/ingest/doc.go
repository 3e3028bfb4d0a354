// Package ingest reads raw legacy export documents and parses them into
// row records.
//
// A document is headered tabular text: the first non-empty line names the
// columns, every following line becomes one string-keyed row, and blank
// lines are skipped. Row order is preserved - later stages rely on it as
// the tie-break for duplicate composite keys.
//
// Fetching is separated from parsing: a Source yields raw text by document
// name, and a fetch failure is fatal for the entity type that needed the
// document, since no partial source can be trusted.
package ingest
