// Package params holds request parameters and the precedence rules used to
// combine them.
//
// Maps merge key-by-key with the override side winning; structured
// selections (order, product) are not merged, the first one present wins.
package params
