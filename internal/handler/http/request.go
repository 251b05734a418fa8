package http

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxBodyBytes = 1 << 20

// decode reads a size-limited JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return validator.DecodeAndValidate(r, dst)
}

// page returns the ?page= query value, defaulting to 1. Sizes are fixed per
// view, so only the page number is read here.
func page(r *http.Request) int {
	return pagination.FromRequest(r, 0).Page
}
