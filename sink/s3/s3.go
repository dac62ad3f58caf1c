package s3

// Placeholder for an S3 backed Sink implementation.
//
// Intent: provide a production ready persistent target using AWS S3 (or
// compatible APIs) implementing the orchestrator.Sink interface, writing one
// outcome document per run under a configurable key prefix. This file
// intentionally remains a stub so that downstream contributors can supply
// credentials / client wiring without pulling an AWS dependency into minimal
// builds. If you implement this, keep the dependency surface narrow and make
// the configuration (bucket, prefix, ACL, encryption) explicit via a small
// Config struct.
