package dialect

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

const maxIdentLength = 255

var (
	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)
	freeTextRe = regexp.MustCompile(`^[A-Za-z0-9_ \-]+$`)
)

// ValidateIdent checks s is safe to interpolate into query text unquoted.
// kind names what s is for error messages, e.g. "database".
func ValidateIdent(kind string, s string) error {
	if s == "" {
		return errors.Newf("%s name must not be empty", kind)
	}
	if len(s) > maxIdentLength {
		return errors.Newf("%s name %q exceeds %d characters", kind, s, maxIdentLength)
	}
	if !identRe.MatchString(s) {
		return errors.Newf("%s name %q contains characters outside [A-Za-z0-9_$]", kind, s)
	}
	return nil
}

// ValidateFreeText checks an operator-typed value (such as a load type) only
// contains identifier-safe characters, returning the trimmed value.
func ValidateFreeText(kind string, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.Newf("%s must not be empty", kind)
	}
	if len(s) > maxIdentLength {
		return "", errors.Newf("%s %q exceeds %d characters", kind, s, maxIdentLength)
	}
	if !freeTextRe.MatchString(s) {
		return "", errors.Newf("%s %q contains characters outside [A-Za-z0-9_ -]", kind, s)
	}
	return s, nil
}

// Relation is a fully qualified database.schema.table name.
type Relation struct {
	Database string
	Schema   string
	Table    string
}

func (r Relation) Validate() error {
	if err := ValidateIdent("database", r.Database); err != nil {
		return err
	}
	if err := ValidateIdent("schema", r.Schema); err != nil {
		return err
	}
	return ValidateIdent("table", r.Table)
}

func (r Relation) String() string {
	return r.Database + "." + r.Schema + "." + r.Table
}

// Projection selects every column of a relation except Exclude.
type Projection struct {
	Relation
	Exclude  []string
	Distinct bool
}

func (p Projection) Validate() error {
	if err := p.Relation.Validate(); err != nil {
		return err
	}
	for _, col := range p.Exclude {
		if err := ValidateIdent("column", col); err != nil {
			return err
		}
	}
	return nil
}
