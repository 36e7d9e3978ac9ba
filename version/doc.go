// Package version carries build metadata for deliverykit binaries.
//
// Values are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/deliverykit/version.Version=1.4.0"
//
// Missing values fall back to the module build info recorded by the Go
// toolchain.
package version
