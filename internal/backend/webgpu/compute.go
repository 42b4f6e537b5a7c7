package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/slate-ml/slate/internal/primitive"
)

// compileShader compiles WGSL into a ShaderModule, cached per name.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	if shader, ok := b.shaders[name]; ok {
		return shader
	}
	shader := b.device.CreateShaderModuleWGSL(code)
	b.shaders[name] = shader
	return shader
}

// pipeline returns a cached ComputePipeline for the named shader.
func (b *Backend) pipeline(name, code string) *wgpu.ComputePipeline {
	if p, ok := b.pipelines[name]; ok {
		return p
	}
	shader := b.compileShader(name, code)
	p := b.device.CreateComputePipelineSimple(nil, shader, "main")
	b.pipelines[name] = p
	return p
}

// stagingUpload creates a CopySrc buffer pre-filled with data.
func (b *Backend) stagingUpload(data []byte) *wgpu.Buffer {
	size := alignUp(uint64(len(data)))
	buf := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	ptr := buf.GetMappedRange(0, size)
	dst := unsafe.Slice((*byte)(ptr), size)
	copy(dst, data)
	buf.Unmap()
	return buf
}

// uniform creates a 16-byte-aligned uniform buffer holding data.
func (b *Backend) uniform(data []byte) *wgpu.Buffer {
	size := (uint64(len(data)) + 15) &^ 15
	buf := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	ptr := buf.GetMappedRange(0, size)
	dst := unsafe.Slice((*byte)(ptr), size)
	copy(dst, data)
	buf.Unmap()
	return buf
}

// params packs uint32 words little-endian for a uniform buffer.
func params(words ...uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// binding describes one storage buffer bound into a dispatch.
type binding struct {
	buf  *Buffer
	size uint64 // bound byte size; 0 means the buffer's full window
}

// dispatch encodes one compute pass over the named shader and enqueues it
// on the pending command queue. Storage operands bind in order starting at
// binding 0; the uniform params buffer binds last.
func (b *Backend) dispatch(name, code string, groupsX, groupsY, groupsZ uint32, uniformData []byte, bufs ...binding) error {
	pipeline := b.pipeline(name, code)

	entries := make([]wgpu.BindGroupEntry, 0, len(bufs)+1)
	for i, bd := range bufs {
		if bd.buf.off%storageAlign != 0 {
			return fmt.Errorf("webgpu: %s: operand %d offset %d is not %d-aligned: %w",
				name, i, bd.buf.off, storageAlign, primitive.ErrInvalidArgument)
		}
		size := bd.size
		if size == 0 {
			size = bd.buf.size
		}
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), bd.buf.buf, bd.buf.off, size))
	}

	uniformBuf := b.uniform(uniformData)
	defer uniformBuf.Release()
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(bufs)), uniformBuf, 0, (uint64(len(uniformData))+15)&^15))

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(layout, entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(groupsX, groupsY, groupsZ)
	pass.End()

	b.queueCommand(encoder.Finish(nil))
	return nil
}

// readBuffer flushes pending work and copies size bytes from src back to
// host memory through a MapRead staging buffer. This is the backend's
// synchronization point: mapping completes only after everything
// submitted before the copy has executed.
func (b *Backend) readBuffer(src *Buffer, size uint64) ([]byte, error) {
	size = alignUp(size)
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src.buf, src.off, staging, 0, size)
	b.queueCommand(encoder.Finish(nil))
	b.flush()

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: mapping staging buffer: %w: %w", err, primitive.ErrDevice)
	}
	ptr := staging.GetMappedRange(0, size)
	mapped := unsafe.Slice((*byte)(ptr), size)
	out := make([]byte, size)
	copy(out, mapped)
	staging.Unmap()
	return out, nil
}

// workgroups computes a 1-D dispatch size for n items.
func workgroups(n int) uint32 {
	return uint32((n + workgroupSize - 1) / workgroupSize)
}
