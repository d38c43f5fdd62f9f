package catalogassets

import _ "embed"

// YAML is the built-in agency catalog.
//
//go:embed agencies.yaml
var YAML []byte
