package renderer

import (
	"honnef.co/go/quilt/device"
)

// Vertex layout descriptors for every shader family. All instanced layouts
// share the same main vertex stream: a quad corner position, normalized from
// two bytes.

var quadVertex = []device.VertexAttribute{
	{Name: "aPosition", Count: 2, Kind: device.U8Norm},
}

var DescPrimInstances = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aData", Count: 4, Kind: device.I32},
	},
}

var DescBlur = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aBlurRenderTaskAddress", Count: 1, Kind: device.U16},
		{Name: "aBlurSourceTaskAddress", Count: 1, Kind: device.U16},
		{Name: "aBlurDirection", Count: 1, Kind: device.I32},
	},
}

var DescLine = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aTaskRect", Count: 4, Kind: device.F32},
		{Name: "aLocalSize", Count: 2, Kind: device.F32},
		{Name: "aWavyLineThickness", Count: 1, Kind: device.F32},
		{Name: "aStyle", Count: 1, Kind: device.I32},
		{Name: "aAxisSelect", Count: 1, Kind: device.F32},
	},
}

// TODO: pack the gradient colors as u32 colors instead of full float vec4s.
// Gradient jobs only run when populating the cache, so it hasn't mattered.
var DescGradient = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aTaskRect", Count: 4, Kind: device.F32},
		{Name: "aStops", Count: 4, Kind: device.F32},
		{Name: "aColor0", Count: 4, Kind: device.F32},
		{Name: "aColor1", Count: 4, Kind: device.F32},
		{Name: "aColor2", Count: 4, Kind: device.F32},
		{Name: "aColor3", Count: 4, Kind: device.F32},
		{Name: "aAxisSelect", Count: 1, Kind: device.F32},
		{Name: "aStartStop", Count: 2, Kind: device.F32},
	},
}

var DescBorder = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aTaskOrigin", Count: 2, Kind: device.F32},
		{Name: "aRect", Count: 4, Kind: device.F32},
		{Name: "aColor0", Count: 4, Kind: device.F32},
		{Name: "aColor1", Count: 4, Kind: device.F32},
		{Name: "aFlags", Count: 1, Kind: device.I32},
		{Name: "aWidths", Count: 2, Kind: device.F32},
		{Name: "aRadii", Count: 2, Kind: device.F32},
		{Name: "aClipParams1", Count: 4, Kind: device.F32},
		{Name: "aClipParams2", Count: 4, Kind: device.F32},
	},
}

var DescScale = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aScaleTargetRect", Count: 4, Kind: device.F32},
		{Name: "aScaleSourceRect", Count: 4, Kind: device.I32},
		{Name: "aScaleSourceLayer", Count: 1, Kind: device.I32},
	},
}

var DescClipRect = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		// common clip attributes
		{Name: "aClipDeviceArea", Count: 4, Kind: device.F32},
		{Name: "aClipOrigins", Count: 4, Kind: device.F32},
		{Name: "aDevicePixelScale", Count: 1, Kind: device.F32},
		{Name: "aTransformIds", Count: 2, Kind: device.I32},
		// specific clip attributes
		{Name: "aClipLocalPos", Count: 2, Kind: device.F32},
		{Name: "aClipLocalRect", Count: 4, Kind: device.F32},
		{Name: "aClipMode", Count: 1, Kind: device.F32},
		{Name: "aClipRect_TL", Count: 4, Kind: device.F32},
		{Name: "aClipRadii_TL", Count: 4, Kind: device.F32},
		{Name: "aClipRect_TR", Count: 4, Kind: device.F32},
		{Name: "aClipRadii_TR", Count: 4, Kind: device.F32},
		{Name: "aClipRect_BL", Count: 4, Kind: device.F32},
		{Name: "aClipRadii_BL", Count: 4, Kind: device.F32},
		{Name: "aClipRect_BR", Count: 4, Kind: device.F32},
		{Name: "aClipRadii_BR", Count: 4, Kind: device.F32},
	},
}

var DescClipBoxShadow = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		// common clip attributes
		{Name: "aClipDeviceArea", Count: 4, Kind: device.F32},
		{Name: "aClipOrigins", Count: 4, Kind: device.F32},
		{Name: "aDevicePixelScale", Count: 1, Kind: device.F32},
		{Name: "aTransformIds", Count: 2, Kind: device.I32},
		// specific clip attributes
		{Name: "aClipDataResourceAddress", Count: 2, Kind: device.U16},
		{Name: "aClipSrcRectSize", Count: 2, Kind: device.F32},
		{Name: "aClipMode", Count: 1, Kind: device.I32},
		{Name: "aStretchMode", Count: 2, Kind: device.I32},
		{Name: "aClipDestRect", Count: 4, Kind: device.F32},
	},
}

var DescClipImage = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		// common clip attributes
		{Name: "aClipDeviceArea", Count: 4, Kind: device.F32},
		{Name: "aClipOrigins", Count: 4, Kind: device.F32},
		{Name: "aDevicePixelScale", Count: 1, Kind: device.F32},
		{Name: "aTransformIds", Count: 2, Kind: device.I32},
		// specific clip attributes
		{Name: "aClipTileRect", Count: 4, Kind: device.F32},
		{Name: "aClipDataResourceAddress", Count: 2, Kind: device.U16},
		{Name: "aClipLocalRect", Count: 4, Kind: device.F32},
	},
}

var DescGpuCacheUpdate = device.VertexDescriptor{
	VertexAttributes: []device.VertexAttribute{
		{Name: "aPosition", Count: 2, Kind: device.U16Norm},
		{Name: "aValue", Count: 4, Kind: device.F32},
	},
	InstanceAttributes: []device.VertexAttribute{},
}

var DescResolve = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aRect", Count: 4, Kind: device.F32},
	},
}

var DescSvgFilter = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aFilterRenderTaskAddress", Count: 1, Kind: device.U16},
		{Name: "aFilterInput1TaskAddress", Count: 1, Kind: device.U16},
		{Name: "aFilterInput2TaskAddress", Count: 1, Kind: device.U16},
		{Name: "aFilterKind", Count: 1, Kind: device.U16},
		{Name: "aFilterInputCount", Count: 1, Kind: device.U16},
		{Name: "aFilterGenericInt", Count: 1, Kind: device.U16},
		{Name: "aFilterExtraDataAddress", Count: 2, Kind: device.U16},
	},
}

var DescVectorStencil = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aFromPosition", Count: 2, Kind: device.F32},
		{Name: "aCtrlPosition", Count: 2, Kind: device.F32},
		{Name: "aToPosition", Count: 2, Kind: device.F32},
		{Name: "aFromNormal", Count: 2, Kind: device.F32},
		{Name: "aCtrlNormal", Count: 2, Kind: device.F32},
		{Name: "aToNormal", Count: 2, Kind: device.F32},
		{Name: "aPathID", Count: 1, Kind: device.U16},
		{Name: "aPad", Count: 1, Kind: device.U16},
	},
}

var DescVectorCover = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aTargetRect", Count: 4, Kind: device.I32},
		{Name: "aStencilOrigin", Count: 2, Kind: device.I32},
		{Name: "aSubpixel", Count: 1, Kind: device.U16},
		{Name: "aPad", Count: 1, Kind: device.U16},
	},
}

var DescComposite = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aDeviceRect", Count: 4, Kind: device.F32},
		{Name: "aDeviceClipRect", Count: 4, Kind: device.F32},
		{Name: "aColor", Count: 4, Kind: device.F32},
		{Name: "aParams", Count: 4, Kind: device.F32},
		{Name: "aUvRect0", Count: 4, Kind: device.F32},
		{Name: "aUvRect1", Count: 4, Kind: device.F32},
		{Name: "aUvRect2", Count: 4, Kind: device.F32},
		{Name: "aTextureLayers", Count: 3, Kind: device.F32},
	},
}

var DescClear = device.VertexDescriptor{
	VertexAttributes: quadVertex,
	InstanceAttributes: []device.VertexAttribute{
		{Name: "aRect", Count: 4, Kind: device.F32},
		{Name: "aColor", Count: 4, Kind: device.F32},
	},
}
