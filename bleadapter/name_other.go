//go:build !softdevice

package bleadapter

const keepNameTerminator = false
