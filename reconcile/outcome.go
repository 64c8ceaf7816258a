package reconcile

import (
	"strconv"

	"github.com/zdqhub/zdq/dbtable"
)

type Status string

const (
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
)

// Sentinel replaces a measurement whose query failed.
const Sentinel int64 = -1

// Kind identifies a validation kind. Every outcome of a kind has the same
// tabular shape.
type Kind string

const (
	KindCount            Kind = "count"
	KindRowDiff          Kind = "data"
	KindDuplicate        Kind = "duplicate"
	KindMaskingParity    Kind = "masking"
	KindMaskingColumn    Kind = "masking_column"
	KindEncryptionColumn Kind = "encryption_column"
	KindEncryptionTable  Kind = "encryption_table"
)

// Outcome is the verdict for one comparison unit. It is implemented by
// CountOutcome, RowDiffOutcome, DuplicateOutcome, ExistenceOutcome and
// ParityOutcome.
type Outcome interface {
	Kind() Kind
	TestCase() Status
	// Row renders the outcome in the column order of Header(Kind()).
	Row() []string
	isOutcome()
}

// Header returns the tabular column names for outcomes of kind k.
func Header(k Kind) []string {
	switch k {
	case KindCount:
		return []string{
			"Load Type", "Load Group", "Environment",
			"SOURCE_TABLE", "SOURCE_ROWS", "TARGET_TABLE", "TARGET_ROWS",
			"Test Case", "Details",
		}
	case KindRowDiff:
		return []string{
			"Load Type", "Load Group", "Environment",
			"Database", "Schema", "Table", "TARGET VS VIEW", "VIEW VS TARGET", "Test Case",
		}
	case KindDuplicate:
		return []string{
			"Load Type", "Load Group", "Environment",
			"Database", "Schema", "Table", "DUP COUNT", "Test Case",
		}
	case KindMaskingParity:
		return []string{
			"Environment", "Database", "Schema", "Validation",
			"Source Count", "Target Count", "Test Case", "Details",
		}
	case KindMaskingColumn:
		return []string{
			"Environment", "Database", "Masked Database", "Schema", "Table", "Column",
			"Classification Owner", "Actual DB Exists", "Masked DB Exists", "Test Case", "Details",
		}
	case KindEncryptionColumn:
		return []string{
			"Environment", "Database", "Encrypted Database", "Schema", "Table", "Column",
			"Classification Owner", "Actual DB Exists", "Encrypted DB Exists", "Test Case", "Details",
		}
	case KindEncryptionTable:
		return []string{
			"Environment", "Database", "Encrypted Database", "Schema", "Table",
			"Classification Owner", "Actual DB Table Exists", "Encrypted DB Table Exists", "Test Case", "Details",
		}
	}
	return nil
}

func statusOf(ok bool) Status {
	if ok {
		return Success
	}
	return Failure
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

// JobLabels identify the ingestion job an ingestion outcome belongs to.
type JobLabels struct {
	Env       string
	LoadGroup string
	LoadType  string
}

type CountOutcome struct {
	JobLabels
	Source  dbtable.TableRef
	Target  dbtable.TableRef
	Status  Status
	Details string
}

func (o CountOutcome) Kind() Kind       { return KindCount }
func (o CountOutcome) TestCase() Status { return o.Status }
func (CountOutcome) isOutcome()         {}

func (o CountOutcome) Row() []string {
	return []string{
		o.LoadType, o.LoadGroup, o.Env,
		o.Source.Name, itoa(o.Source.RowCount), o.Target.Name, itoa(o.Target.RowCount),
		string(o.Status), o.Details,
	}
}

// RowDiffOutcome holds both directions of the set difference between a loaded
// table and its raw view.
type RowDiffOutcome struct {
	JobLabels
	Table           dbtable.Name
	TargetMinusView int64
	ViewMinusTarget int64
	Status          Status
	Details         string
}

func (o RowDiffOutcome) Kind() Kind       { return KindRowDiff }
func (o RowDiffOutcome) TestCase() Status { return o.Status }
func (RowDiffOutcome) isOutcome()         {}

func (o RowDiffOutcome) Row() []string {
	return []string{
		o.LoadType, o.LoadGroup, o.Env,
		o.Table.Database, o.Table.Schema, o.Table.Table,
		itoa(o.TargetMinusView), itoa(o.ViewMinusTarget), string(o.Status),
	}
}

type DuplicateOutcome struct {
	JobLabels
	Table    dbtable.Name
	DupCount int64
	Status   Status
	Details  string
}

func (o DuplicateOutcome) Kind() Kind       { return KindDuplicate }
func (o DuplicateOutcome) TestCase() Status { return o.Status }
func (DuplicateOutcome) isOutcome()         {}

func (o DuplicateOutcome) Row() []string {
	return []string{
		o.LoadType, o.LoadGroup, o.Env,
		o.Table.Database, o.Table.Schema, o.Table.Table, itoa(o.DupCount), string(o.Status),
	}
}

type Level int

const (
	LevelColumn Level = iota
	LevelTable
)

// ExistenceOutcome records whether a table or column is present in the actual
// database and its counterpart. A count of Sentinel means the check failed.
type ExistenceOutcome struct {
	Env                 string
	Level               Level
	Counterpart         Counterpart
	Unit                dbtable.Column
	CounterpartDatabase string
	Owner               string
	ActualMatches       int64
	CounterpartMatches  int64
	Status              Status
	Details             string
}

func (o ExistenceOutcome) Kind() Kind {
	switch {
	case o.Counterpart == Masked:
		return KindMaskingColumn
	case o.Level == LevelTable:
		return KindEncryptionTable
	}
	return KindEncryptionColumn
}

func (o ExistenceOutcome) TestCase() Status { return o.Status }
func (ExistenceOutcome) isOutcome()         {}

func yesNo(matches int64) string {
	switch {
	case matches == Sentinel:
		return "Error"
	case matches > 0:
		return "Yes"
	}
	return "No"
}

func (o ExistenceOutcome) Row() []string {
	ret := []string{o.Env, o.Unit.Database, o.CounterpartDatabase, o.Unit.Schema, o.Unit.Table}
	if o.Level == LevelColumn {
		ret = append(ret, o.Unit.Column)
	}
	return append(
		ret,
		o.Owner, yesNo(o.ActualMatches), yesNo(o.CounterpartMatches), string(o.Status), o.Details,
	)
}

// ParityOutcome compares a count taken from a database against the same count
// taken from its metadata or counterpart.
type ParityOutcome struct {
	Env         string
	Database    string
	Schema      string
	Check       string
	SourceCount int64
	TargetCount int64
	Status      Status
	Details     string
}

func (o ParityOutcome) Kind() Kind       { return KindMaskingParity }
func (o ParityOutcome) TestCase() Status { return o.Status }
func (ParityOutcome) isOutcome()         {}

func (o ParityOutcome) Row() []string {
	return []string{
		o.Env, o.Database, o.Schema, o.Check,
		itoa(o.SourceCount), itoa(o.TargetCount), string(o.Status), o.Details,
	}
}
