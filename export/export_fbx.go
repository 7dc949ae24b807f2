package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"

	"github.com/mogaika/anmerge/merge"
	"github.com/mogaika/anmerge/utils"
)

const FBX_CREATOR = "FBX SDK/FBX Plugins version 2013.3 build=20121223"
const FBX_APPLICATION_VENDOR = "Sea Dogs modding community"
const FBX_APPLICATION_NAME = "anmerge"
const FBX_APPLICATION_VERSION = "1.0"
const FBX_DATE_TIME_GMT = "01/01/1970 00:00:00.000"
const FBX_CREATION_TIME = "1970-01-01 10:00:00:000"

// FBX_TIME_SECOND is one second in KTime ticks
const FBX_TIME_SECOND = 46186158000

// KeyAttrFlags of a linear key
const FBX_KEY_LINEAR = 0x4

var FBX_FILE_ID []byte = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

// FBXSink writes a binary fbx with a LimbNode skeleton and one take
type FBXSink struct{}

func (FBXSink) WriteTimeline(w io.Writer, t *merge.Timeline) error {
	b, err := BuildFBX(t)
	if err != nil {
		return err
	}
	return errors.Wrapf(b.Write(w), "Failed to write fbx of %q", t.Name)
}

type FBXBuilder struct {
	f      *fbx.FBX
	lastId int64

	objects     *fbx.Node
	connections *fbx.Node
	// model id per bone
	models []int64
}

func newFBXBuilder(t *merge.Timeline) *FBXBuilder {
	b := &FBXBuilder{
		lastId:      1000000,
		f:           fbx.NewFBX(7400),
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
	}
	b.createHeaders(t)
	return b
}

func fbxTime(frame int, fps float32) int64 {
	return int64(float64(frame) / float64(fps) * FBX_TIME_SECOND)
}

func (b *FBXBuilder) createHeaders(t *merge.Timeline) {
	stop := fbxTime(t.FrameCount-1, t.FPS)
	if t.FrameCount == 0 {
		stop = 0
	}

	b.Root().AddNodes(
		bfbx73.FBXHeaderExtension().AddNodes(
			bfbx73.FBXHeaderVersion(1003),
			bfbx73.FBXVersion(7400),
			bfbx73.EncryptionType(0),
			bfbx73.CreationTimeStamp().AddNodes(
				bfbx73.Version(1000),
				bfbx73.Year(1970),
				bfbx73.Month(1),
				bfbx73.Day(1),
				bfbx73.Hour(10),
				bfbx73.Minute(0),
				bfbx73.Second(0),
				bfbx73.Millisecond(0),
			),
			bfbx73.Creator(FBX_CREATOR),
			bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
				bfbx73.Type("UserData"),
				bfbx73.Version(100),
				bfbx73.MetaData().AddNodes(
					bfbx73.Version(100),
					bfbx73.Title(t.Name),
					bfbx73.Subject(""),
					bfbx73.Author(""),
					bfbx73.Keywords(""),
					bfbx73.Revision(""),
					bfbx73.Comment(t.Report()),
				),
				bfbx73.Properties70().AddNodes(
					bfbx73.P("Original", "Compound", "", ""),
					bfbx73.P("Original|ApplicationVendor", "KString", "", "", FBX_APPLICATION_VENDOR),
					bfbx73.P("Original|ApplicationName", "KString", "", "", FBX_APPLICATION_NAME),
					bfbx73.P("Original|ApplicationVersion", "KString", "", "", FBX_APPLICATION_VERSION),
					bfbx73.P("Original|DateTime_GMT", "DateTime", "", "", FBX_DATE_TIME_GMT),
					bfbx73.P("Original|FileName", "KString", "", "", filepath.Base(t.Name)),
				),
			),
		),
		bfbx73.FileId(FBX_FILE_ID),
		bfbx73.CreationTime(FBX_CREATION_TIME),
		bfbx73.Creator(FBX_CREATOR),
		bfbx73.GlobalSettings().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("UpAxis", "int", "Integer", "", int32(1)),
				bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("FrontAxis", "int", "Integer", "", int32(2)),
				bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("CoordAxis", "int", "Integer", "", int32(0)),
				bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
				bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
				// custom frame rate
				bfbx73.P("TimeMode", "enum", "", "", int32(14)),
				bfbx73.P("CustomFrameRate", "double", "Number", "", float64(t.FPS)),
				bfbx73.P("TimeSpanStart", "KTime", "Time", "", int64(0)),
				bfbx73.P("TimeSpanStop", "KTime", "Time", "", stop),
			),
		),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(b.GenerateId(), "Scene", "Scene").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("SourceObject", "object", "", ""),
					bfbx73.P("ActiveAnimStackName", "KString", "", "", t.Name),
				),
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		bfbx73.Definitions().AddNodes(
			bfbx73.Version(100),
			bfbx73.Count(1),
			bfbx73.ObjectType("GlobalSettings").AddNodes(
				bfbx73.Count(1),
			),
			bfbx73.ObjectType("Model").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxNode").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("RotationOrder", "enum", "", "", int32(0)),
						bfbx73.P("Show", "bool", "", "", int32(1)),
						bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
						bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
						bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
						bfbx73.P("Visibility", "Visibility", "", "A", float64(1)),
						bfbx73.P("Visibility Inheritance", "Visibility Inheritance", "", "", int32(1)),
					),
				),
			),
			bfbx73.ObjectType("NodeAttribute").AddNodes(
				bfbx73.Count(0),
				bfbx73.PropertyTemplate("FbxSkeleton").AddNodes(
					bfbx73.Properties70().AddNodes(
						bfbx73.P("Size", "double", "Number", "", float64(100)),
						bfbx73.P("LimbLength", "double", "Number", "H", float64(1)),
					),
				),
			),
		),
		b.objects,
		b.connections,
		bfbx73.Takes().AddNodes(
			bfbx73.Current(t.Name),
		),
	)
}

func (b *FBXBuilder) countDefinitions() {
	counts := make(map[string]int32)
	for _, object := range b.objects.Nodes {
		counts[object.Name]++
	}

	definitions := b.Root().GetNode("Definitions")
	totalCount := int32(1) // 1 for GlobalSettings

	for name, count := range counts {
		totalCount += count

		var objectType *fbx.Node
		for _, ot := range definitions.GetNodes("ObjectType") {
			if ot.Properties[0].(string) == name {
				objectType = ot
			}
		}
		if objectType == nil {
			objectType = bfbx73.ObjectType(name)
			definitions.AddNode(objectType)
		}

		objectType.GetOrAddNode(bfbx73.Count(0)).Properties[0] = count
	}

	definitions.GetOrAddNode(bfbx73.Count(0)).Properties[0] = totalCount
}

func (b *FBXBuilder) Root() *fbx.Node {
	return &b.f.Root
}

func (b *FBXBuilder) GenerateId() int64 {
	b.lastId++
	return b.lastId
}

func (b *FBXBuilder) AddObjects(nodes ...*fbx.Node)     { b.objects.AddNodes(nodes...) }
func (b *FBXBuilder) AddConnections(nodes ...*fbx.Node) { b.connections.AddNodes(nodes...) }

// Objects lists every object node added so far
func (b *FBXBuilder) Objects() []*fbx.Node { return b.objects.Nodes }

// Connections lists every connection node added so far
func (b *FBXBuilder) Connections() []*fbx.Node { return b.connections.Nodes }

// fbx.Write wants a seekable destination
func (b *FBXBuilder) Write(w io.Writer) error {
	b.countDefinitions()

	tempFile, err := os.CreateTemp("", "anmerge.*.fbx")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if err := fbx.Write(tempFile, b.f); err != nil {
		return err
	}

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek")
	}
	_, err = io.Copy(w, tempFile)
	return err
}

// node builds a raw fbx node, for animation objects
func node(name string, properties ...interface{}) *fbx.Node {
	return &fbx.Node{Name: name, Properties: properties}
}

func eulerDegrees(q mgl32.Quat) mgl32.Vec3 {
	e := utils.QuatToEuler(q)
	return mgl32.Vec3{utils.Degrees(e[0]), utils.Degrees(e[1]), utils.Degrees(e[2])}
}

// unwrapDegrees shifts each component by whole turns to stay closest to prev
func unwrapDegrees(prev, cur mgl32.Vec3) mgl32.Vec3 {
	for i := range cur {
		for cur[i]-prev[i] > 180 {
			cur[i] -= 360
		}
		for cur[i]-prev[i] < -180 {
			cur[i] += 360
		}
	}
	return cur
}

func (b *FBXBuilder) addSkeleton(t *merge.Timeline) error {
	bones := t.BoneCount()
	b.models = make([]int64, bones)
	for bone := 0; bone < bones; bone++ {
		translation := t.RestPosition[bone]
		var rotation mgl32.Vec3
		if t.FrameCount > 0 {
			rotation = eulerDegrees(t.Rotation[bone][0])
			if bone == 0 {
				translation = translation.Add(t.Translation[0])
			}
		}

		b.models[bone] = b.GenerateId()
		name := jointName(bone)
		model := bfbx73.Model(b.models[bone], name+"\x00\x01Model", "LimbNode").AddNodes(
			bfbx73.Version(232),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("Lcl Translation", "Lcl Translation", "", "A+",
					float64(translation[0]), float64(translation[1]), float64(translation[2])),
				bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A+",
					float64(rotation[0]), float64(rotation[1]), float64(rotation[2])),
			),
			bfbx73.Shading(true),
			bfbx73.Culling("CullingOff"),
		)
		attribute := bfbx73.NodeAttribute(b.GenerateId(), name+"\x00\x01NodeAttribute", "LimbNode").AddNodes(
			bfbx73.TypeFlags("Skeleton"),
		)
		b.AddObjects(model, attribute)
		b.AddConnections(bfbx73.C("OO", attribute.Properties[0].(int64), b.models[bone]))
	}

	for bone := 0; bone < bones; bone++ {
		var parent int64
		if bone != 0 {
			p := int(t.ParentIndex[bone])
			if p < 0 || p >= bones || p == bone {
				return errors.Errorf("Bone %d has invalid parent %d", bone, p)
			}
			parent = b.models[p]
		}
		b.AddConnections(bfbx73.C("OO", b.models[bone], parent))
	}
	return nil
}

// addCurveNode animates one Lcl property of a model with three curves
func (b *FBXBuilder) addCurveNode(layer, model int64, property, short string, keys []int64, values []mgl32.Vec3) {
	curveNodeId := b.GenerateId()
	curveNode := node("AnimationCurveNode", curveNodeId, short+"\x00\x01AnimCurveNode", "").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("d|X", "Number", "", "A", float64(values[0][0])),
			bfbx73.P("d|Y", "Number", "", "A", float64(values[0][1])),
			bfbx73.P("d|Z", "Number", "", "A", float64(values[0][2])),
		),
	)
	b.AddObjects(curveNode)
	b.AddConnections(
		bfbx73.C("OO", curveNodeId, layer),
		bfbx73.C("OP", curveNodeId, model, property),
	)

	flags := []int32{FBX_KEY_LINEAR}
	for axis, channel := range []string{"d|X", "d|Y", "d|Z"} {
		keyValues := make([]float32, len(values))
		for f, v := range values {
			keyValues[f] = v[axis]
		}
		curveId := b.GenerateId()
		b.AddObjects(node("AnimationCurve", curveId, "\x00\x01AnimCurve", "").AddNodes(
			node("Default", float64(keyValues[0])),
			node("KeyVer", int32(4008)),
			node("KeyTime", keys),
			node("KeyValueFloat", keyValues),
			node("KeyAttrFlags", flags),
			node("KeyAttrDataFloat", []float32{0, 0, 0, 0}),
			node("KeyAttrRefCount", []int32{int32(len(keys))}),
		))
		b.AddConnections(bfbx73.C("OP", curveId, curveNodeId, channel))
	}
}

func (b *FBXBuilder) addAnimation(t *merge.Timeline) {
	if t.FrameCount == 0 {
		return
	}
	stop := fbxTime(t.FrameCount-1, t.FPS)

	stackId, layerId := b.GenerateId(), b.GenerateId()
	b.AddObjects(
		node("AnimationStack", stackId, t.Name+"\x00\x01AnimStack", "").AddNodes(
			bfbx73.Properties70().AddNodes(
				bfbx73.P("LocalStop", "KTime", "Time", "", stop),
				bfbx73.P("ReferenceStop", "KTime", "Time", "", stop),
			),
		),
		node("AnimationLayer", layerId, "BaseLayer\x00\x01AnimLayer", ""),
	)
	b.AddConnections(bfbx73.C("OO", layerId, stackId))

	keys := make([]int64, t.FrameCount)
	for f := range keys {
		keys[f] = fbxTime(f, t.FPS)
	}

	translations := make([]mgl32.Vec3, t.FrameCount)
	for f, v := range t.Translation {
		translations[f] = t.RestPosition[0].Add(v)
	}
	b.addCurveNode(layerId, b.models[0], "Lcl Translation", "T", keys, translations)

	for bone := range t.Rotation {
		rotations := make([]mgl32.Vec3, t.FrameCount)
		for f, q := range t.Rotation[bone] {
			rotations[f] = eulerDegrees(q)
			if f > 0 {
				rotations[f] = unwrapDegrees(rotations[f-1], rotations[f])
			}
		}
		b.addCurveNode(layerId, b.models[bone], "Lcl Rotation", "R", keys, rotations)
	}
}

// BuildFBX lays out the skeleton and its take without writing anything
func BuildFBX(t *merge.Timeline) (*FBXBuilder, error) {
	if t.FPS <= 0 {
		return nil, errors.Errorf("Timeline %q has invalid fps %v", t.Name, t.FPS)
	}
	b := newFBXBuilder(t)
	if t.BoneCount() == 0 {
		return b, nil
	}
	if err := b.addSkeleton(t); err != nil {
		return nil, err
	}
	b.addAnimation(t)
	return b, nil
}
