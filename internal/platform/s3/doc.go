// Package s3 talks to the MinIO audio inbox over the S3 API.
//
// Uploading into the inbox bucket is what sets the event pipeline in motion:
// MinIO publishes a bucket notification to Kafka, and the eventing chain
// carries it to the audio event handler. The client forces path-style
// addressing and can skip TLS verification for clusters with self-signed
// certificates.
package s3
