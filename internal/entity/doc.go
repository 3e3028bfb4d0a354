// Package entity defines the normalized target data model.
//
// Each entity is a typed record with a required identifier and references
// to other entities by identifier only - no embedded objects. Entities are
// created once through deterministic identifier synthesis and thereafter
// only updated (status corrections) or deleted (bulk cleanup), never
// silently duplicated.
package entity
