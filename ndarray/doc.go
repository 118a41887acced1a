// Package ndarray provides the dense numeric array persisted by jsondata.
//
// Arrays are float64, row-major, and carry an explicit shape. The text
// (delimited), binary (npy) and archive (npz) codecs all operate on *Array.
package ndarray
