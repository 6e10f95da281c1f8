package assets

import "embed"

//go:embed categories.json
var FS embed.FS

// CategoriesJSON returns the raw embedded category catalog.
func CategoriesJSON() ([]byte, error) {
	return FS.ReadFile("categories.json")
}
