package reconcile

// ReportableObject is anything a Reporter accepts: an Outcome, a Warning, a
// StatusReport or a Planned announcement.
type ReportableObject interface{}

type Reporter interface {
	Report(obj ReportableObject)
	Close()
}

// Warning is a non-fatal failure of one comparison unit.
type Warning struct {
	Unit string
	Err  error
}

type StatusReport struct {
	Info string
}

// Planned announces how many units a run is about to reconcile.
type Planned struct {
	Kind  Kind
	Units int
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(ReportableObject) {}
func (NopReporter) Close()                  {}
