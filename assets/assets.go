// Package assets embeds static data files shipped with the binary.
package assets

import "embed"

// CategoriesFS embeds the category taxonomy served by the API.
//
//go:embed categories.json
var CategoriesFS embed.FS

// CategoriesPath is the taxonomy file name inside CategoriesFS.
const CategoriesPath = "categories.json"
