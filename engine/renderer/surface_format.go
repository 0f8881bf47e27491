package renderer

import "github.com/cogentcore/webgpu/wgpu"

// SelectSurfaceFormat picks the surface pixel format from the candidates a surface reports,
// in the surface's own preference order. The first 8-bit BGRA format wins, linear or sRGB;
// otherwise the surface's first preference is used.
//
// Parameters:
//   - candidates: the formats reported by the surface
//
// Returns:
//   - wgpu.TextureFormat: the selected format
//   - bool: false if candidates is empty
func SelectSurfaceFormat(candidates []wgpu.TextureFormat) (wgpu.TextureFormat, bool) {
	if len(candidates) == 0 {
		var undefined wgpu.TextureFormat
		return undefined, false
	}
	for _, f := range candidates {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatBGRA8UnormSrgb {
			return f, true
		}
	}
	return candidates[0], true
}

// SelectPresentMode resolves a PresentMode preference against the modes a surface supports.
// Fifo is always supported, so every preference falls back to it.
//
// Parameters:
//   - available: the present modes reported by the surface
//   - pref: the requested presentation behavior
//
// Returns:
//   - wgpu.PresentMode: the present mode to configure
func SelectPresentMode(available []wgpu.PresentMode, pref PresentMode) wgpu.PresentMode {
	var want wgpu.PresentMode
	switch pref {
	case PresentModeLowLatency:
		want = wgpu.PresentModeMailbox
	case PresentModeUncapped:
		want = wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
	for _, m := range available {
		if m == want {
			return m
		}
	}
	return wgpu.PresentModeFifo
}

// selectAlphaMode takes the surface's first alpha mode, or the zero (automatic) mode when none are reported.
func selectAlphaMode(available []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	if len(available) == 0 {
		var auto wgpu.CompositeAlphaMode
		return auto
	}
	return available[0]
}
