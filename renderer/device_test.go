package renderer

import (
	"fmt"

	"honnef.co/go/quilt/device"
)

// fakeDevice implements Device with plain in-memory state so tests can
// observe exactly which verbs the staging layer issues.
type fakeDevice struct {
	nextHandle uint32
	vbos       map[device.VBOID]*fakeBuffer
	vaos       map[device.VAOID]*fakeVAO
	textures   map[device.TextureID]*fakeTexture
	boundVAO   device.VAOID
	boundVBO   device.VBOID
	boundUnits map[int]device.TextureID
	inFrame    bool
	stats      device.FrameStats

	vboCreates     int
	vboDeletes     int
	vaoDeletes     int
	maps           int
	unmaps         int
	switches       int
	vboBinds       int
	updates        int
	textureCreates int
	textureDeletes int
	uploadRows     []int
}

type fakeBuffer struct {
	data   []byte
	hint   device.VertexUsageHint
	mapped bool
}

type fakeVAO struct {
	desc            *device.VertexDescriptor
	instanceDivisor uint32
	base            device.VAOID
	mainVertices    []byte
	indices         []uint16
	instanceVBO     device.VBOID
	currentVBO      device.VBOID
	currentOffset   int
}

type fakeTexture struct {
	format device.TexelFormat
	width  int
	height int
	data   []byte
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		vbos:       make(map[device.VBOID]*fakeBuffer),
		vaos:       make(map[device.VAOID]*fakeVAO),
		textures:   make(map[device.TextureID]*fakeTexture),
		boundUnits: make(map[int]device.TextureID),
	}
}

func (d *fakeDevice) handle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *fakeDevice) BeginFrame() device.FrameID {
	if d.inFrame {
		panic("frame already open")
	}
	d.inFrame = true
	d.stats = device.FrameStats{}
	return 1
}

func (d *fakeDevice) EndFrame() {
	if !d.inFrame {
		panic("no frame open")
	}
	for id, buf := range d.vbos {
		if buf.mapped {
			panic(fmt.Sprintf("VBO %d still mapped at frame end", id))
		}
	}
	d.inFrame = false
}

func (d *fakeDevice) Stats() device.FrameStats {
	return d.stats
}

func (d *fakeDevice) CreateVBO() device.VBOID {
	id := device.VBOID(d.handle())
	d.vbos[id] = &fakeBuffer{}
	d.vboCreates++
	return id
}

func (d *fakeDevice) DeleteVBO(id device.VBOID) {
	d.vbo(id)
	delete(d.vbos, id)
	d.vboDeletes++
}

func (d *fakeDevice) BindVBO(id device.VBOID) {
	d.vbo(id)
	d.boundVBO = id
	d.vboBinds++
}

func (d *fakeDevice) UpdateVBOData(id device.VBOID, data []byte, hint device.VertexUsageHint) {
	buf := d.vbo(id)
	if buf.mapped {
		panic(fmt.Sprintf("updating mapped VBO %d", id))
	}
	buf.data = append(buf.data[:0], data...)
	buf.hint = hint
	d.updates++
}

func (d *fakeDevice) InitializeMappedVBO(id device.VBOID, size int, hint device.VertexUsageHint) []byte {
	buf := d.vbo(id)
	if buf.mapped {
		panic(fmt.Sprintf("mapping mapped VBO %d", id))
	}
	buf.data = make([]byte, size)
	buf.hint = hint
	buf.mapped = true
	d.maps++
	return buf.data
}

func (d *fakeDevice) UnmapVBO(id device.VBOID) {
	buf := d.vbo(id)
	if !buf.mapped {
		panic(fmt.Sprintf("unmapping unmapped VBO %d", id))
	}
	buf.mapped = false
	d.unmaps++
}

func (d *fakeDevice) CreateVAO(desc *device.VertexDescriptor, instanceDivisor uint32) device.VAOID {
	id := device.VAOID(d.handle())
	vao := &fakeVAO{
		desc:            desc,
		instanceDivisor: instanceDivisor,
		instanceVBO:     d.CreateVBO(),
	}
	vao.currentVBO = vao.instanceVBO
	d.vaos[id] = vao
	return id
}

func (d *fakeDevice) CreateVAOWithNewInstances(desc *device.VertexDescriptor, base device.VAOID) device.VAOID {
	b := d.vao(base)
	id := device.VAOID(d.handle())
	vao := &fakeVAO{
		desc:            desc,
		instanceDivisor: b.instanceDivisor,
		base:            base,
		instanceVBO:     d.CreateVBO(),
	}
	vao.currentVBO = vao.instanceVBO
	d.vaos[id] = vao
	return id
}

func (d *fakeDevice) DeleteVAO(id device.VAOID) {
	vao := d.vao(id)
	d.DeleteVBO(vao.instanceVBO)
	delete(d.vaos, id)
	d.vaoDeletes++
}

func (d *fakeDevice) BindVAO(id device.VAOID) {
	d.vao(id)
	d.boundVAO = id
}

func (d *fakeDevice) UpdateVAOIndices(id device.VAOID, indices []uint16, hint device.VertexUsageHint) {
	vao := d.vao(id)
	vao.indices = append(vao.indices[:0], indices...)
}

func (d *fakeDevice) UpdateVAOMainVertices(id device.VAOID, data []byte, hint device.VertexUsageHint) {
	vao := d.vao(id)
	vao.mainVertices = append(vao.mainVertices[:0], data...)
}

func (d *fakeDevice) SwitchInstanceBuffer(id device.VAOID, vbo device.VBOID, offset int) {
	vao := d.vao(id)
	d.vbo(vbo)
	vao.currentVBO = vbo
	vao.currentOffset = offset
	d.switches++
}

func (d *fakeDevice) VAOInstanceVBO(id device.VAOID) device.VBOID {
	return d.vao(id).instanceVBO
}

func (d *fakeDevice) VAOInstanceDivisor(id device.VAOID) uint32 {
	return d.vao(id).instanceDivisor
}

func (d *fakeDevice) CreateTexture(format device.TexelFormat, width, height int) device.TextureID {
	id := device.TextureID(d.handle())
	d.textures[id] = &fakeTexture{
		format: format,
		width:  width,
		height: height,
	}
	d.textureCreates++
	return id
}

func (d *fakeDevice) DeleteTexture(id device.TextureID) {
	d.texture(id)
	delete(d.textures, id)
	d.textureDeletes++
}

func (d *fakeDevice) UploadTexture(id device.TextureID, rows int, data []byte) {
	tex := d.texture(id)
	if rows > tex.height {
		panic(fmt.Sprintf("uploading %d rows into %d-row texture", rows, tex.height))
	}
	if len(data) != rows*tex.width*device.BytesPerTexel {
		panic(fmt.Sprintf("upload of %d bytes does not cover %d rows", len(data), rows))
	}
	tex.data = append(tex.data[:0], data...)
	d.uploadRows = append(d.uploadRows, rows)
}

func (d *fakeDevice) BindTexture(unit int, id device.TextureID) {
	d.texture(id)
	d.boundUnits[unit] = id
}

func (d *fakeDevice) TextureSize(id device.TextureID) (int, int) {
	tex := d.texture(id)
	return tex.width, tex.height
}

func (d *fakeDevice) MaxTextureSize() int {
	return 8192
}

func (d *fakeDevice) vbo(id device.VBOID) *fakeBuffer {
	buf, ok := d.vbos[id]
	if !ok {
		panic(fmt.Sprintf("use of unknown VBO %d", id))
	}
	return buf
}

func (d *fakeDevice) vao(id device.VAOID) *fakeVAO {
	vao, ok := d.vaos[id]
	if !ok {
		panic(fmt.Sprintf("use of unknown VAO %d", id))
	}
	return vao
}

func (d *fakeDevice) texture(id device.TextureID) *fakeTexture {
	tex, ok := d.textures[id]
	if !ok {
		panic(fmt.Sprintf("use of unknown texture %d", id))
	}
	return tex
}

var _ Device = (*fakeDevice)(nil)
