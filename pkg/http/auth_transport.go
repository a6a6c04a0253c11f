package http

import "net/http"

type headerAuthTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.value != "" {
		reqCopy.Header.Set(t.header, t.value)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthHeader attaches a static credential header (e.g. x-goog-api-key)
// to every outbound request.
func WithAuthHeader(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerAuthTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}
