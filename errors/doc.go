/*
Package errors provides semantic error types for the contentstore library.

The package defines the failure classes of the retrieval path with specific types that can
be checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound            = errors.New("entity not found")
	    ErrInvalidInput        = errors.New("invalid input")
	    ErrConfiguration       = errors.New("configuration error")
	    ErrStorage             = errors.New("storage error")
	    ErrTransactionNotFound = errors.New("transaction not found")
	    ErrForeignTransaction  = errors.New("transaction belongs to another driver")
	)

A missing document is not an error on the read path: single-item lookups return a nil
document and list lookups return an empty page. ErrNotFound is reserved for registered
components (drivers, tables) that do not exist.

Usage:

	page, err := retriever.Find(ctx, args)
	if err != nil {
	    if errors.IsConfiguration(err) {
	        // unknown slug, report as a client error
	    }
	    if errors.IsStorage(err) {
	        // driver failure, surfaced unchanged
	    }
	    return nil, err
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
