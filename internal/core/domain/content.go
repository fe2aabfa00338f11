package domain

import (
	"errors"
	"fmt"
)

// A Testimonial is a customer quote shown on the home page.
type Testimonial struct {
	ID       int
	Name     string
	Location string
	Quote    string
	Avatar   string
}

func (t Testimonial) Validate() error {
	var errs []error
	if t.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if t.Quote == "" {
		errs = append(errs, errors.New("quote is empty"))
	}
	if len(errs) != 0 {
		return fmt.Errorf("testimonial %d: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

type TeamMember struct {
	ID    int
	Name  string
	Role  string
	Bio   string
	Image string
}

func (m TeamMember) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if m.Role == "" {
		errs = append(errs, errors.New("role is empty"))
	}
	if len(errs) != 0 {
		return fmt.Errorf("team member %d: %w", m.ID, errors.Join(errs...))
	}
	return nil
}
