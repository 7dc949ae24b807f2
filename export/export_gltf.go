package export

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/anmerge/merge"
)

// GLTFSink writes a skeleton of plain nodes with one animation
type GLTFSink struct {
	Binary bool
}

func jointName(bone int) string {
	return fmt.Sprintf("joint_%d", bone)
}

func quatXYZW(q mgl32.Quat) [4]float32 {
	return q.V.Vec4(q.W)
}

// BuildGLTF converts the timeline into a document. Nodes follow bone order,
// so node i is bone i.
func BuildGLTF(t *merge.Timeline) (*gltf.Document, error) {
	if t.FPS <= 0 {
		return nil, errors.Errorf("Timeline %q has invalid fps %v", t.Name, t.FPS)
	}

	doc := gltf.NewDocument()
	bones := t.BoneCount()
	if bones == 0 {
		return doc, nil
	}

	skin := &gltf.Skin{Name: t.Name, Joints: make([]uint32, bones)}
	for bone := 0; bone < bones; bone++ {
		node := &gltf.Node{
			Name:        jointName(bone),
			Translation: t.RestPosition[bone],
			Rotation:    [4]float32{0, 0, 0, 1},
			Scale:       [3]float32{1, 1, 1},
		}
		if t.FrameCount > 0 {
			node.Rotation = quatXYZW(t.Rotation[bone][0])
		}
		if bone == 0 && t.FrameCount > 0 {
			node.Translation = t.RestPosition[0].Add(t.Translation[0])
		}
		skin.Joints[bone] = uint32(bone)
		doc.Nodes = append(doc.Nodes, node)
	}
	for bone := 1; bone < bones; bone++ {
		parent := int(t.ParentIndex[bone])
		if parent < 0 || parent >= bones || parent == bone {
			return nil, errors.Errorf("Bone %d has invalid parent %d", bone, parent)
		}
		doc.Nodes[parent].Children = append(doc.Nodes[parent].Children, uint32(bone))
	}
	skin.Skeleton = gltf.Index(0)
	doc.Skins = append(doc.Skins, skin)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	if t.FrameCount == 0 {
		return doc, nil
	}

	keys := make([]float32, t.FrameCount)
	for f := range keys {
		keys[f] = float32(f) / t.FPS
	}
	keysAcc := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, keys)

	anim := &gltf.Animation{Name: t.Name}
	addChannel := func(node uint32, path gltf.TRSProperty, samplesAcc uint32) {
		anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(keysAcc),
			Output:        gltf.Index(samplesAcc),
			Interpolation: gltf.InterpolationLinear,
		})
		anim.Channels = append(anim.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(node),
				Path: path,
			},
		})
	}

	translations := make([][3]float32, t.FrameCount)
	for f, v := range t.Translation {
		translations[f] = t.RestPosition[0].Add(v)
	}
	addChannel(0, gltf.TRSTranslation, modeler.WritePosition(doc, translations))

	for bone := 0; bone < bones; bone++ {
		rotations := make([][4]float32, t.FrameCount)
		for f, q := range t.Rotation[bone] {
			rotations[f] = quatXYZW(q)
		}
		addChannel(uint32(bone), gltf.TRSRotation, modeler.WriteTangent(doc, rotations))
	}

	doc.Animations = append(doc.Animations, anim)
	return doc, nil
}

func (s *GLTFSink) WriteTimeline(w io.Writer, t *merge.Timeline) error {
	doc, err := BuildGLTF(t)
	if err != nil {
		return err
	}
	if !s.Binary {
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = s.Binary
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrapf(err, "Failed to encode gltf of %q", t.Name)
	}
	return nil
}
