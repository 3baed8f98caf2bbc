//go:build softdevice

package bleadapter

// The SoftDevice sends the complete name field byte for byte.
const keepNameTerminator = true
