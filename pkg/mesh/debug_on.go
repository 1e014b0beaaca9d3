//go:build g3ddebug

package mesh

const debugChecks = true
