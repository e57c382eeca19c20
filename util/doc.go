// Package util provides small utility helpers shared across speechkit packages:
// size parsing, pointer helpers, and secret masking for logs.
package util
