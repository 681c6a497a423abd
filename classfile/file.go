package classfile

const (
	Magic        uint32 = 0x59754B72
	MajorVersion uint16 = 0
	MinorVersion uint16 = 1
)

// File is the in-memory form of a .ykb bytecode file (spec.md §6): a
// constant pool plus a flat attribute list. The top-level program's Code
// attribute and an optional SourceFile attribute are the only shapes
// this implementation produces, but Attributes is a plain slice so a
// reader that encounters an attribute name it does not recognize can
// still round-trip its raw bytes.
type File struct {
	Major, Minor uint16
	Pool         *Pool
	Attributes   []Attribute
}

// Assemble builds the on-disk File for prog, attaching a Code attribute
// and, if sourcePath is non-empty, a SourceFile attribute naming it.
func Assemble(prog *Program, sourcePath string) *File {
	codeNameIdx := prog.Pool.Utf8("Code")
	attrs := []Attribute{
		{NameIndex: codeNameIdx, Payload: prog.Code.EncodePayload()},
	}
	if sourcePath != "" {
		sfNameIdx := prog.Pool.Utf8("SourceFile")
		pathIdx := prog.Pool.Utf8(sourcePath)
		payload := make([]byte, 2)
		payload[0] = byte(pathIdx >> 8)
		payload[1] = byte(pathIdx)
		attrs = append(attrs, Attribute{NameIndex: sfNameIdx, Payload: payload})
	}
	return &File{
		Major:      MajorVersion,
		Minor:      MinorVersion,
		Pool:       prog.Pool,
		Attributes: attrs,
	}
}

// CodeAttribute locates and decodes this file's Code attribute. Every
// valid file produced by Assemble has exactly one; a hand-crafted or
// corrupt file might not, which the VM loader treats as malformed.
func (f *File) CodeAttribute() (CodeAttribute, bool) {
	for _, a := range f.Attributes {
		entry, ok := f.Pool.Get(a.NameIndex)
		if !ok || entry.Tag != TagUtf8 || entry.Utf8 != "Code" {
			continue
		}
		c, err := DecodeCodeAttribute(a.Payload)
		if err != nil {
			return CodeAttribute{}, false
		}
		return c, true
	}
	return CodeAttribute{}, false
}

// SourceFile returns the path named by this file's SourceFile attribute,
// if present.
func (f *File) SourceFile() (string, bool) {
	for _, a := range f.Attributes {
		entry, ok := f.Pool.Get(a.NameIndex)
		if !ok || entry.Tag != TagUtf8 || entry.Utf8 != "SourceFile" {
			continue
		}
		if len(a.Payload) != 2 {
			return "", false
		}
		idx := uint16(a.Payload[0])<<8 | uint16(a.Payload[1])
		pathEntry, ok := f.Pool.Get(idx)
		if !ok || pathEntry.Tag != TagUtf8 {
			return "", false
		}
		return pathEntry.Utf8, true
	}
	return "", false
}
