package categories

import (
	"errors"
	"strings"
)

// normalize trims and sentence-cases a submitted category name so "nature"
// and "Nature" collide on the same uniqueness key.
func (s *Service) normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("categories: category name is required")
	}
	runes := []rune(strings.ToLower(name))
	return s.upper.String(string(runes[0])) + string(runes[1:]), nil
}
