package gateway

import (
	"encoding/json"
	"maps"
	"net/http"
	"strings"
)

// Envelope is the uniform response produced for every request.
type Envelope struct {
	Headers    map[string]string
	Body       []byte
	StatusCode int
}

// Response bodies. Field order is fixed by the struct definitions, so
// serialization is deterministic.
type (
	UploadBody struct {
		UploadURL string `json:"upload_url"`
	}

	DownloadBody struct {
		DownloadURL string `json:"download_url"`
	}

	ListBody struct {
		Files []Filename `json:"files"`
	}

	MessageBody struct {
		Message string `json:"message"`
	}

	ErrorBody struct {
		Error string `json:"error"`
	}
)

// ContentTypeJSON is attached to every envelope.
const ContentTypeJSON = "application/json"

// fallbackBody is used when a body cannot be serialized.
var fallbackBody = []byte(`{"error":"Internal server error"}`)

// DefaultCORSConfig allows any origin to call the gateway with a bearer token.
var DefaultCORSConfig = CORSConfig{
	Enabled:      true,
	AllowOrigin:  "*",
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Content-Type", "Authorization"},
}

// CORSConfig controls the cross-origin headers added to envelopes.
type CORSConfig struct {
	AllowOrigin  string   `yaml:"allow_origin"`
	AllowMethods []string `yaml:"allow_methods"`
	AllowHeaders []string `yaml:"allow_headers"`
	Enabled      bool     `yaml:"enabled"`
}

// Formatter builds envelopes.
type Formatter struct {
	headers map[string]string
}

// NewFormatter creates a formatter. Empty CORS fields fall back to
// DefaultCORSConfig when CORS is enabled.
func NewFormatter(cors CORSConfig) *Formatter {
	headers := map[string]string{"Content-Type": ContentTypeJSON}

	if cors.Enabled {
		if cors.AllowOrigin == "" {
			cors.AllowOrigin = DefaultCORSConfig.AllowOrigin
		}
		if len(cors.AllowMethods) == 0 {
			cors.AllowMethods = DefaultCORSConfig.AllowMethods
		}
		if len(cors.AllowHeaders) == 0 {
			cors.AllowHeaders = DefaultCORSConfig.AllowHeaders
		}
		headers["Access-Control-Allow-Origin"] = cors.AllowOrigin
		headers["Access-Control-Allow-Methods"] = strings.Join(cors.AllowMethods, ", ")
		headers["Access-Control-Allow-Headers"] = strings.Join(cors.AllowHeaders, ", ")
	}

	return &Formatter{headers: headers}
}

// Format serializes body into an envelope with the given status.
// It never fails: an unserializable body yields a 500 envelope.
func (f *Formatter) Format(status int, body any) Envelope {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = fallbackBody
	}
	return Envelope{
		StatusCode: status,
		Headers:    maps.Clone(f.headers),
		Body:       data,
	}
}

// Error converts err into an error envelope. Unclassified errors become
// backend errors with their message preserved.
func (f *Formatter) Error(err error) Envelope {
	gwErr := AsError(err)
	return f.Format(gwErr.StatusCode(), ErrorBody{Error: gwErr.Message})
}

// Preflight answers a CORS preflight request with no body.
func (f *Formatter) Preflight() Envelope {
	return Envelope{
		StatusCode: http.StatusNoContent,
		Headers:    maps.Clone(f.headers),
	}
}
