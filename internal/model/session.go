// Package model defines domain types for trip plans, budgets, and sessions.
package model

import "strings"

// User is the mock session user shown for personalization.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FirstName returns the first word of the user's name, or "Traveler".
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return "Traveler"
	}
	return fields[0]
}
