// Package files groups file access used by the CSV source.
package files
