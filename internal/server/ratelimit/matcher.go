package ratelimit

import "net/http"

// uploadPaths are the routes that forward a file to the parsing service.
var uploadPaths = map[string]bool{
	"/":           true,
	"/api/upload": true,
}

// IsUploadRequest reports whether a request sends a file upstream.
func IsUploadRequest(path string, method string) bool {
	return method == http.MethodPost && uploadPaths[path]
}
