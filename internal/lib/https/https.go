package https

import "github.com/quintans/tvshelf/internal/lib/fails"

// StatusCode returns the HTTP status carried by an error returned from Client.Request, or 0.
func StatusCode(err error) int {
	if v, ok := fails.Get(err, "status"); ok {
		if i, ok := v.(int); ok {
			return i
		}
	}

	return 0
}

// Body returns the response body carried by an error returned from Client.Request.
func Body(err error) string {
	if v, ok := fails.Get(err, "body"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}
