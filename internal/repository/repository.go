// Package repository persists deals, contacts, emails, meetings, documents
// and chat messages in PostgreSQL.
package repository

import (
	"database/sql"
	_ "embed"
	"errors"
)

//go:embed schema.sql
var Schema string

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("RECORD_NOT_FOUND")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("DUPLICATE_RECORD")
)

// Store bundles every table store over one connection pool.
type Store struct {
	Deals        *DealRepository
	Contacts     *ContactRepository
	Emails       *EmailRepository
	Meetings     *MeetingRepository
	Documents    *DocumentRepository
	ChatMessages *ChatMessageRepository
}

func New(db *sql.DB) *Store {
	return &Store{
		Deals:        &DealRepository{db: db},
		Contacts:     &ContactRepository{db: db},
		Emails:       &EmailRepository{db: db},
		Meetings:     &MeetingRepository{db: db},
		Documents:    &DocumentRepository{db: db},
		ChatMessages: &ChatMessageRepository{db: db},
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
