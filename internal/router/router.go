package router

import (
	"net/http"
	"net/url"
	"strings"
)

// Params holds path captures extracted while matching a pattern. Wildcard
// remainders are stored under the "*" key.
type Params map[string]string

// Handler processes a dispatched request together with its path captures.
type Handler func(w http.ResponseWriter, r *http.Request, params Params)

type route struct {
	method   string
	segments []string
	handler  Handler
}

// Router matches method plus path against registered patterns.
type Router struct {
	routes []route
}

// New returns an empty router.
func New() *Router {
	return &Router{}
}

// Register adds a route. Routes are evaluated in registration order and the
// first match wins. A "*" segment is only meaningful as the final segment.
func (rt *Router) Register(method, pattern string, handler Handler) {
	rt.routes = append(rt.routes, route{
		method:   strings.ToUpper(strings.TrimSpace(method)),
		segments: splitPath(pattern),
		handler:  handler,
	})
}

// Dispatch routes the request to the first matching handler and reports
// whether any route handled it.
func (rt *Router) Dispatch(w http.ResponseWriter, r *http.Request) bool {
	method := strings.ToUpper(r.Method)
	pathSegments := splitPath(r.URL.Path)

	for _, candidate := range rt.routes {
		if candidate.method != method {
			continue
		}
		params, ok := matchSegments(candidate.segments, pathSegments)
		if !ok {
			continue
		}
		candidate.handler(w, r, params)
		return true
	}
	return false
}

func matchSegments(pattern, path []string) (Params, bool) {
	params := Params{}
	i, j := 0, 0

	for i < len(pattern) && j < len(path) {
		segment := pattern[i]

		if segment == "*" {
			params["*"] = decodeSegment(strings.Join(path[j:], "/"))
			return params, true
		}

		if strings.HasPrefix(segment, ":") {
			params[segment[1:]] = decodeSegment(path[j])
			i++
			j++
			continue
		}

		if segment != path[j] {
			return nil, false
		}
		i++
		j++
	}

	// A trailing wildcard also matches an empty remainder.
	if i < len(pattern) && pattern[i] == "*" {
		params["*"] = ""
		i++
	}

	if i != len(pattern) || j != len(path) {
		return nil, false
	}
	return params, true
}

// splitPath normalizes trailing slashes away (the root path has no segments)
// and drops empty segments produced by repeated slashes.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func decodeSegment(value string) string {
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}
