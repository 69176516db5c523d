package batch

// ItemStatus is the ingestion outcome of a single candidate.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of ingesting one candidate. Position is the item's
// index in the submitted list, so callers can match results to inputs even
// when the id itself was invalid.
type Result struct {
	position int
	id       string
	status   ItemStatus
	err      error
}

// NewOK creates a successful result.
func NewOK(position int, id string) Result {
	return Result{position: position, id: id, status: StatusOK}
}

// NewError creates a failed result.
func NewError(position int, id string, err error) Result {
	return Result{position: position, id: id, status: StatusError, err: err}
}

// Position returns the index of the item in the submitted list.
func (r Result) Position() int { return r.position }

// ID returns the candidate identifier as submitted.
func (r Result) ID() string { return r.id }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count returns how many results succeeded and failed.
func Count(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
