// Package catalog walks a manga's chapter feed page by page, caching every
// page in the collection directory, and selects the entries worth archiving.
package catalog
