package assets

import "fmt"

// PageFilename names the render of a 1-based page: page-01.png, page-02.png, ...
func PageFilename(page int) string {
	return fmt.Sprintf("page-%02d.png", page)
}

// ImageFilename names an embedded image by its 1-based global counter and page
func ImageFilename(counter, page int, ext string) string {
	return fmt.Sprintf("img-%03d-page%d.%s", counter, page, ext)
}
