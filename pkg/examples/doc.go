// Package examples provides ready-made Things used by the example
// server and the end-to-end tests: a dimmable lamp and a humidity
// sensor.
package examples
