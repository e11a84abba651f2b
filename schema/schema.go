// Package schema has the models and constants shared by all parts of contacts.
package schema

import (
	"errors"
	"strings"
)

// Contact is a single entry of the remote contact collection.
// The ID is assigned by the remote service and never generated locally.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Photo     string `json:"photo"`
}

// ContactDraft is the body sent on create and update. It never carries an ID.
type ContactDraft struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
	Photo     string `json:"photo"`
}

// Draft returns the editable fields of the contact, used to pre-fill an update.
func (c Contact) Draft() ContactDraft {
	return ContactDraft{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Age:       c.Age,
		Photo:     c.Photo,
	}
}

// FullName joins first and last name with a single space.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate checks that every field of the draft is filled in.
func (d ContactDraft) Validate() error {
	var errs []error
	if strings.TrimSpace(d.FirstName) == "" {
		errs = append(errs, errors.New("first name is required"))
	}
	if strings.TrimSpace(d.LastName) == "" {
		errs = append(errs, errors.New("last name is required"))
	}
	if d.Age < 0 {
		errs = append(errs, errors.New("age must be non-negative"))
	}
	if strings.TrimSpace(d.Photo) == "" {
		errs = append(errs, errors.New("photo url is required"))
	}
	return errors.Join(errs...)
}

// CloneContacts returns a copy of the slice so callers cannot alias store state.
// A nil input yields an empty, non-nil slice.
func CloneContacts(contacts []Contact) []Contact {
	out := make([]Contact, len(contacts))
	copy(out, contacts)
	return out
}
