// Package gateway turns authenticated file requests into short-lived
// presigned URLs against a shared object store.
//
// Every tenant owns the key prefix "<identity>/". A [Router] resolves the
// caller's identity from trusted claims, validates the filename, checks the
// storage quota for uploads and then either issues a grant or performs a
// list or delete on the tenant's behalf. Bytes never pass through the
// gateway.
//
//	router, err := gateway.New(gateway.Config{
//	    Backend: store,
//	    Logger:  log,
//	    CORS:    gateway.DefaultCORSConfig,
//	})
//	if err != nil {
//	    return err
//	}
//	env := router.Handle(ctx, gateway.Request{
//	    Path:   "/upload",
//	    Query:  map[string]string{"filename": "report.pdf", "size": "1000"},
//	    Claims: gateway.Claims{"sub": "alice"},
//	})
//
// Handle never returns an error. Failures are classified by [Kind] and
// rendered into an [Envelope] with the matching status and a JSON body of
// the form {"error": "..."}.
//
// The quota check is advisory. Usage is recomputed from a full listing on
// each upload request, and nothing is reserved between admission and the
// client's PUT.
package gateway
