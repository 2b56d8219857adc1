package statuses

// Status is a visibility label ("Public", "Private") referenced by
// activities by name, without an enforced foreign key.
type Status struct {
	ID          int64
	ShareStatus string
}
