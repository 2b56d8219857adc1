package categories

// Category labels a group of activities. Activities reference it by name
// only; deleting a category leaves those references dangling.
type Category struct {
	ID           int64
	CategoryName string
}
