//go:build cgo

package database

// go-libsql only builds with cgo; its files carry a cgo build constraint.
import _ "github.com/tursodatabase/go-libsql"
