//go:build darwin && cgo

package darwin

import "github.com/mj1618/a11y-mcp/internal/platform"

func init() {
	platform.NewProviderFunc = func(pid int) (platform.Provider, error) {
		return New(pid)
	}
}
