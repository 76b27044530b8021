package param

import (
	"github.com/lanikai/alohaspa/pod"
)

// BuildList writes a List entry naming a supported parameter.
func BuildList(b *pod.Builder, id ID) (pod.Pod, error) {
	return b.Object(ObjectParamList, uint32(List),
		pod.Prop{Key: ListKeyID, Value: pod.Id(id)})
}

// ParseList returns the parameter named by a List entry.
func ParseList(p pod.Pod) (ID, error) {
	var id uint32
	_, err := pod.ParseObject(p, ObjectParamList,
		pod.Field{Key: ListKeyID, Type: pod.TypeId, Dest: &id})
	return ID(id), err
}

// BufferRequirements is a fixated Buffers parameter.
type BufferRequirements struct {
	Buffers int32
	Blocks  int32
	Size    int32
	Stride  int32
	Align   int32
}

// ParseBuffers reads a fixated Buffers parameter. Blocks, stride and align
// are optional.
func ParseBuffers(p pod.Pod) (BufferRequirements, error) {
	r := BufferRequirements{Blocks: 1, Align: 8}
	_, err := pod.ParseObject(p, ObjectParamBuffers,
		pod.Field{Key: BuffersKeyBuffers, Type: pod.TypeInt, Dest: &r.Buffers},
		pod.Field{Key: BuffersKeyBlocks, Type: pod.TypeInt, Optional: true, Dest: &r.Blocks},
		pod.Field{Key: BuffersKeySize, Type: pod.TypeInt, Dest: &r.Size},
		pod.Field{Key: BuffersKeyStride, Type: pod.TypeInt, Optional: true, Dest: &r.Stride},
		pod.Field{Key: BuffersKeyAlign, Type: pod.TypeInt, Optional: true, Dest: &r.Align},
	)
	return r, err
}

// BuildMeta writes a Meta parameter.
func BuildMeta(b *pod.Builder, typ MetaType, size int32) (pod.Pod, error) {
	return b.Object(ObjectParamMeta, uint32(Meta),
		pod.Prop{Key: MetaKeyType, Value: pod.Id(typ)},
		pod.Prop{Key: MetaKeySize, Value: pod.Int(size)})
}

// ParseMeta reads a Meta parameter.
func ParseMeta(p pod.Pod) (MetaType, int32, error) {
	var (
		typ  uint32
		size int32
	)
	_, err := pod.ParseObject(p, ObjectParamMeta,
		pod.Field{Key: MetaKeyType, Type: pod.TypeId, Dest: &typ},
		pod.Field{Key: MetaKeySize, Type: pod.TypeInt, Dest: &size})
	return MetaType(typ), size, err
}

// BuildIO writes an IO parameter announcing an I/O area of the given size.
func BuildIO(b *pod.Builder, typ IOType, size int32) (pod.Pod, error) {
	return b.Object(ObjectParamIO, uint32(IO),
		pod.Prop{Key: IOKeyID, Value: pod.Id(typ)},
		pod.Prop{Key: IOKeySize, Value: pod.Int(size)})
}

// ParseIO reads an IO parameter.
func ParseIO(p pod.Pod) (IOType, int32, error) {
	var (
		typ  uint32
		size int32
	)
	_, err := pod.ParseObject(p, ObjectParamIO,
		pod.Field{Key: IOKeyID, Type: pod.TypeId, Dest: &typ},
		pod.Field{Key: IOKeySize, Type: pod.TypeInt, Dest: &size})
	return IOType(typ), size, err
}

// BuildProfile writes a Profile parameter wrapping an encoded Format object.
func BuildProfile(b *pod.Builder, format pod.Pod) (pod.Pod, error) {
	b.PushObject(ObjectParamProfile, uint32(Profile))
	b.Prop(ProfileKeyFormat, 0)
	b.Raw(format)
	return b.Pop()
}

// ParseProfile returns the Format object carried by a Profile parameter.
func ParseProfile(p pod.Pod) (pod.Pod, error) {
	var format pod.Pod
	_, err := pod.ParseObject(p, ObjectParamProfile,
		pod.Field{Key: ProfileKeyFormat, Type: pod.TypePod, Dest: &format})
	return format, err
}
