// Package ingest loads tag records from CSV and writes them to DynamoDB in
// fixed-size BatchWriteItem chunks, reporting items the store did not process.
package ingest
