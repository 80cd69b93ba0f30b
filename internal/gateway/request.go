package gateway

import (
	"net/http"
	"strings"
)

// Operation is a routable gateway action.
type Operation int

const (
	OpUnknown Operation = iota
	OpUpload
	OpDownload
	OpList
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpUpload:
		return "upload"
	case OpDownload:
		return "download"
	case OpList:
		return "list"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// routes maps request paths to operations. Legacy aliases share the
// operation of their canonical path.
var routes = map[string]Operation{
	"/upload":              OpUpload,
	"/generate-upload-url": OpUpload,
	"/download":            OpDownload,
	"/list":                OpList,
	"/delete":              OpDelete,
}

// Query parameter names.
const (
	ParamFilename = "filename"
	ParamSize     = "size"
)

// Request is the normalized event handed over by the front door.
type Request struct {
	Query  map[string]string
	Claims Claims
	Path   string
	// Method is the transport method. Empty when the front door does not surface it.
	Method string
}

// Operation resolves the request path and method to an operation.
// A trailing slash is ignored. Delete requires the DELETE method whenever a
// method is present; otherwise the request is unroutable.
func (r Request) Operation() Operation {
	path := r.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	op, ok := routes[path]
	if !ok {
		return OpUnknown
	}
	if op == OpDelete && r.Method != "" && !strings.EqualFold(r.Method, http.MethodDelete) {
		return OpUnknown
	}
	return op
}

// Param returns a query parameter and whether it is present and non-empty.
func (r Request) Param(name string) (string, bool) {
	v, ok := r.Query[name]
	return v, ok && v != ""
}
