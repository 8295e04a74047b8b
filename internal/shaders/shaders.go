// Package shaders embeds the built-in WGSL sources.
package shaders

import _ "embed"

//go:embed object_vs.wgsl
var ObjectVertex string

//go:embed object_fs.wgsl
var ObjectFragment string

//go:embed instanced_vs.wgsl
var InstancedVertex string

//go:embed instanced_fs.wgsl
var InstancedFragment string

//go:embed flat_vs.wgsl
var FlatVertex string

//go:embed flat_fs.wgsl
var FlatFragment string

//go:embed post_vs.wgsl
var PostVertex string

//go:embed grayscale_fs.wgsl
var GrayscaleFragment string

//go:embed waves_fs.wgsl
var WavesFragment string
