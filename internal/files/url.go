package files

import "net/url"

// ContentPath is the API route that streams a stored file.
const ContentPath = "/api/v1/files/content"

// ContentURL returns the service URL that streams the file at path.
func ContentURL(path string) string {
	if path == "" {
		return ""
	}
	return ContentPath + "?path=" + url.QueryEscape(path)
}
