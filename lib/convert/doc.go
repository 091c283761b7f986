// Package convert provides the conversion service between domain values and
// their stored byte representations. Converters are registered per type at
// runtime on an explicit Registry; converting a value of an unregistered
// type fails with a ConversionError instead of guessing a representation.
package convert
