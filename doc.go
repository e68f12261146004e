// Package quilt stages per-frame instance data for a GPU renderer.
//
// The renderer sub-package accumulates instance records on the CPU,
// coalesces them into pooled vertex buffers, and mirrors structured
// per-frame tables (primitive headers, transforms, render tasks) into
// data textures that vertex shaders index. The device sub-package
// provides the buffer, VAO and texture verbs this staging layer is
// written against, backed by wgpu.
package quilt
