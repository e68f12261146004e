package device

import (
	"fmt"

	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"
)

// VAOID is a handle to a vertex array. The zero value is invalid.
type VAOID uint32

type vertexArray struct {
	desc            *VertexDescriptor
	instanceDivisor uint32
	// owns reports whether the VAO owns the main VBO and index buffer.
	// VAOs created by CreateVAOWithNewInstances share their base's.
	owns bool

	mainVBO VBOID
	ibo     *indexBuffer

	// instanceVBO is the VAO's own instance stream; the instance slot points
	// at it until SwitchInstanceBuffer redirects it.
	instanceVBO    VBOID
	currentVBO     VBOID
	currentOffset  int
}

type indexBuffer struct {
	buf   *wgpu.Buffer
	count int
}

// CreateVAO creates a vertex array for the descriptor, together with a main
// VBO, an index buffer, and an instance stream VBO it owns. An instance
// divisor of zero makes the instance attributes step per vertex.
func (d *Device) CreateVAO(desc *VertexDescriptor, instanceDivisor uint32) VAOID {
	id := VAOID(d.handle())
	vao := &vertexArray{
		desc:            desc,
		instanceDivisor: instanceDivisor,
		owns:            true,
		mainVBO:         d.CreateVBO(),
		ibo:             &indexBuffer{},
		instanceVBO:     d.CreateVBO(),
	}
	vao.currentVBO = vao.instanceVBO
	d.vaos[id] = vao
	return id
}

// CreateVAOWithNewInstances creates a vertex array that shares base's main
// vertices and indices but has an instance stream of its own.
func (d *Device) CreateVAOWithNewInstances(desc *VertexDescriptor, base VAOID) VAOID {
	b := d.vao(base)
	id := VAOID(d.handle())
	vao := &vertexArray{
		desc:            desc,
		instanceDivisor: b.instanceDivisor,
		owns:            false,
		mainVBO:         b.mainVBO,
		ibo:             b.ibo,
		instanceVBO:     d.CreateVBO(),
	}
	vao.currentVBO = vao.instanceVBO
	d.vaos[id] = vao
	return id
}

// DeleteVAO deletes the VAO and the buffers it owns. VAOs derived from a
// base VAO hold only their own instance VBO, so bases and derivations can be
// deleted in any order.
func (d *Device) DeleteVAO(id VAOID) {
	vao := d.vao(id)
	d.DeleteVBO(vao.instanceVBO)
	if vao.owns {
		d.DeleteVBO(vao.mainVBO)
		if vao.ibo.buf != nil {
			d.pool.put(vao.ibo.buf, Static)
			vao.ibo.buf = nil
		}
	}
	delete(d.vaos, id)
	if d.boundVAO == id {
		d.boundVAO = 0
	}
}

func (d *Device) BindVAO(id VAOID) {
	d.vao(id)
	d.boundVAO = id
}

// BoundVAO returns the currently bound VAO, or zero.
func (d *Device) BoundVAO() VAOID {
	return d.boundVAO
}

// UpdateVAOIndices allocates fresh storage for the VAO's index buffer and
// uploads indices into it.
func (d *Device) UpdateVAOIndices(id VAOID, indices []uint16, hint VertexUsageHint) {
	vao := d.vao(id)
	data := safeish.SliceCast[[]byte](indices)
	if vao.ibo.buf != nil {
		d.pool.put(vao.ibo.buf, hint)
	}
	var created bool
	vao.ibo.buf, created = d.pool.get(d.dev, uint64(len(data)), "quilt indices", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, hint)
	if created {
		d.stats.BuffersCreated++
	} else {
		d.stats.BuffersReused++
	}
	d.writeBuffer(vao.ibo.buf, data)
	vao.ibo.count = len(indices)
}

// UpdateVAOMainVertices allocates fresh storage for the VAO's main VBO and
// uploads data into it.
func (d *Device) UpdateVAOMainVertices(id VAOID, data []byte, hint VertexUsageHint) {
	vao := d.vao(id)
	d.UpdateVBOData(vao.mainVBO, data, hint)
}

// SwitchInstanceBuffer points the VAO's instance attributes at vbo, reading
// from offset bytes into it. Vertex attributes and indices are untouched.
func (d *Device) SwitchInstanceBuffer(id VAOID, vbo VBOID, offset int) {
	vao := d.vao(id)
	d.vbo(vbo)
	vao.currentVBO = vbo
	vao.currentOffset = offset
}

// VAOInstanceVBO returns the VAO's own instance stream VBO.
func (d *Device) VAOInstanceVBO(id VAOID) VBOID {
	return d.vao(id).instanceVBO
}

// VAOInstanceDivisor returns the instance divisor the VAO was created with.
func (d *Device) VAOInstanceDivisor(id VAOID) uint32 {
	return d.vao(id).instanceDivisor
}

// VAOBinding describes where a VAO's slots currently point, for embedders
// setting vertex buffers on a render pass.
type VAOBinding struct {
	MainVBO        VBOID
	InstanceVBO    VBOID
	InstanceOffset int
	IndexBuffer    *wgpu.Buffer
	IndexCount     int
}

func (d *Device) Binding(id VAOID) VAOBinding {
	vao := d.vao(id)
	return VAOBinding{
		MainVBO:        vao.mainVBO,
		InstanceVBO:    vao.currentVBO,
		InstanceOffset: vao.currentOffset,
		IndexBuffer:    vao.ibo.buf,
		IndexCount:     vao.ibo.count,
	}
}

func (d *Device) vao(id VAOID) *vertexArray {
	vao, ok := d.vaos[id]
	if !ok {
		panic(fmt.Sprintf("device: use of unknown VAO %d", id))
	}
	return vao
}
