package data

import _ "embed"

//go:embed airports.json
var AirportsJSON []byte
