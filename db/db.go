package db

import _ "embed"

// Schema creates every table the service needs. It is idempotent.
//
//go:embed schema.sql
var Schema string
