//go:build !linux

package led

import "fmt"

// The WS281x PWM/DMA engine only exists on Linux SBCs. On other platforms
// construction fails and the factory degrades the backend to a null device.
func newWS281x(int, string, float64) (Device, error) {
	return nil, fmt.Errorf("ws281x requires linux")
}
