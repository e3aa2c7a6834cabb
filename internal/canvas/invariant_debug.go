//go:build canvasdebug

package canvas

const debugInvariants = true
