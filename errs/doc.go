// Package errs defines the error kinds surfaced by repositories, transaction
// scopes and the batch ingestion pipeline. Each typed error matches its sentinel
// through errors.Is so callers can branch on the kind without type assertions.
package errs
