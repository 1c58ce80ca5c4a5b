// Package archive persists instrument time series as self-describing Parquet
// files.
//
// Each archive holds one row per sample (timestamp_ms, value, quality) and
// carries the deployment metadata as a JSON document in the file's key/value
// metadata under MetadataKey. Writes go to a temporary file in the destination
// directory and are renamed into place only once the Parquet footer is
// flushed, so a failed write never leaves a partial archive behind.
package archive
