// Package form validates raw user input before it reaches the estimator or
// the auth service. Messages match what the screens display.
package form

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// Field names used as FieldErrors keys.
const (
	FieldDestination = "destination"
	FieldBudget      = "budget"
	FieldDuration    = "duration"
	FieldPeople      = "people"
	FieldMonth       = "month"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
)

// Validation messages.
const (
	MsgDestinationRequired = "Destination is required"
	MsgBudgetInvalid       = "Please enter a valid budget"
	MsgDurationRequired    = "Please enter trip duration"
	MsgPeopleRequired      = "Please enter number of travelers"
	MsgMonthRequired       = "Please select a travel month"

	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 6 characters"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 6

// Upper bounds on trip size.
const (
	MaxDuration = 3650
	MaxPeople   = 1000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Empty reports whether no field failed.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for k := range fe {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, name := range fe.Fields() {
		parts = append(parts, name+": "+fe[name])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) check(field string, err error) {
	if err != nil {
		fe[field] = err.Error()
	}
}

// TripInput is the raw new-trip form.
type TripInput struct {
	Destination string `json:"destination"`
	Budget      string `json:"budget"`
	Duration    string `json:"duration"`
	People      string `json:"people"`
	Month       string `json:"month"`
}

// ParseTrip validates in and converts it to a request. The request is only
// meaningful when the returned FieldErrors is empty.
func ParseTrip(in TripInput) (model.TripRequest, FieldErrors) {
	errs := FieldErrors{}
	var req model.TripRequest

	errs.check(FieldDestination, Destination(in.Destination))
	req.Destination = strings.TrimSpace(in.Destination)

	if err := Budget(in.Budget); err != nil {
		errs.check(FieldBudget, err)
	} else {
		req.Budget, _ = strconv.ParseFloat(strings.TrimSpace(in.Budget), 64)
	}

	if err := Duration(in.Duration); err != nil {
		errs.check(FieldDuration, err)
	} else {
		req.Duration, _ = strconv.Atoi(strings.TrimSpace(in.Duration))
	}

	if err := People(in.People); err != nil {
		errs.check(FieldPeople, err)
	} else {
		req.People, _ = strconv.Atoi(strings.TrimSpace(in.People))
	}

	if m, ok := model.ParseMonth(in.Month); ok {
		req.Month = m
	} else {
		errs[FieldMonth] = MsgMonthRequired
	}

	return req, errs
}

// ValidateSignup checks the signup form.
func ValidateSignup(name, email, password string) FieldErrors {
	errs := FieldErrors{}
	errs.check(FieldName, Name(name))
	errs.check(FieldEmail, Email(email))
	errs.check(FieldPassword, NewPassword(password))
	return errs
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) FieldErrors {
	errs := FieldErrors{}
	errs.check(FieldEmail, Email(email))
	errs.check(FieldPassword, Password(password))
	return errs
}

// Destination requires a non-blank value.
func Destination(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(MsgDestinationRequired)
	}
	return nil
}

// Budget requires a positive number.
func Budget(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errors.New(MsgBudgetInvalid)
	}
	return nil
}

// Duration requires a whole number of days between 1 and MaxDuration.
func Duration(s string) error {
	return boundedInt(s, MaxDuration, MsgDurationRequired)
}

// People requires a whole number of travelers between 1 and MaxPeople.
func People(s string) error {
	return boundedInt(s, MaxPeople, MsgPeopleRequired)
}

// Month requires a full English month name.
func Month(s string) error {
	if _, ok := model.ParseMonth(s); !ok {
		return errors.New(MsgMonthRequired)
	}
	return nil
}

// Name requires a non-blank value.
func Name(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(MsgNameRequired)
	}
	return nil
}

// Email requires a plausible address.
func Email(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New(MsgEmailRequired)
	}
	if !emailPattern.MatchString(s) {
		return errors.New(MsgEmailInvalid)
	}
	return nil
}

// Password requires any non-empty value.
func Password(s string) error {
	if s == "" {
		return errors.New(MsgPasswordRequired)
	}
	return nil
}

// NewPassword applies the signup length rule on top of Password.
func NewPassword(s string) error {
	if err := Password(s); err != nil {
		return err
	}
	if len(s) < MinPasswordLength {
		return errors.New(MsgPasswordTooShort)
	}
	return nil
}

// Months returns the month names in calendar order.
func Months() []string {
	out := make([]string, 0, len(model.Months))
	for _, m := range model.Months {
		out = append(out, m.String())
	}
	return out
}

func boundedInt(s string, limit int, msg string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 || v > limit {
		return errors.New(msg)
	}
	return nil
}
