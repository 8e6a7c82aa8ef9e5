package pocketbase

import (
	"net/url"
	"strings"
)

// FileURL returns the URL of a record's file, or "" when any part is blank.
// thumb selects a thumbnail size such as "100x100" and may be empty.
func FileURL(baseURL, collection, recordID, filename, thumb string) string {
	filename = strings.TrimSpace(filename)
	if baseURL == "" || collection == "" || recordID == "" || filename == "" {
		return ""
	}
	u := strings.TrimRight(baseURL, "/") + "/api/files/" +
		url.PathEscape(collection) + "/" +
		url.PathEscape(recordID) + "/" +
		url.PathEscape(filename)
	if thumb != "" {
		u += "?thumb=" + url.QueryEscape(thumb)
	}
	return u
}
