// Package models defines the LawHelper records persisted in PostgreSQL and
// the closed enumerations validated before they reach the database.
package models
