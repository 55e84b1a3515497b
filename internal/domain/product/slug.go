package product

import "github.com/gosimple/slug"

// Slugify lowercases and hyphenates a product name into a URL-safe slug.
func Slugify(name string) string {
	return slug.Make(name)
}
