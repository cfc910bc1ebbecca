// Package templates holds the templ sources of the pages, partials and
// components; go generate compiles them into *_templ.go files.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate
