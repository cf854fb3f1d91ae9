// Package utils converts the loosely typed values returned by JSON APIs.
package utils
