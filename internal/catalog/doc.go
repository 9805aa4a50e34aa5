// Package catalog holds the descriptor catalog: the externally supplied
// component descriptors that markup elements and attributes bind to.
//
// A Catalog is immutable after New and safe to share between goroutines and
// compilations. Descriptors keep their catalog order, which is the priority
// order used when bindings conflict.
package catalog
