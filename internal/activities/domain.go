package activities

import "time"

// Activity is one bucket-list entry. Category and ShareStatus are weak
// references: they hold names of category/status records and survive the
// deletion of what they point at. Username records the creating user, but
// mutation rights are role-based, not ownership-based.
type Activity struct {
	ID            int64
	ActivityName  string
	Category      string
	Description   string
	ShareStatus   string
	EstimatedCost string
	Address       string
	City          string
	State         string
	Country       string
	ExpectedDate  string
	Username      string
	DateAdded     time.Time
	DateModified  time.Time
}
