// Package language normalizes the target-language argument into the tag form
// used by the catalog's translatedLanguage field and provides display names.
package language
