// Package model defines the native model contract consumed by the converters
// and admin adapters. A storage backend describes each of its record types as a
// Model: a declared type name, a primary-key field name, and an ordered list of
// Fields. Every backend maps its own declaration vocabulary (relational column
// classes, document field classes, ORM data types) onto the closed Kind
// enumeration so a single conversion pipeline can serve all of them.
//
// Field metadata is immutable once declared. Converters only read it and
// produce fresh form descriptors per call.
package model
