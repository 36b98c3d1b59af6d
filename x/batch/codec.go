package batch

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type byteArrayListView ByteArrayList

func (v *byteArrayListView) Reset()         { *v = byteArrayListView{} }
func (v *byteArrayListView) String() string { return proto.CompactTextString(v) }
func (*byteArrayListView) ProtoMessage()    {}

func (l *ByteArrayList) Marshal() ([]byte, error) {
	return codec.Marshal((*byteArrayListView)(l))
}

func (l *ByteArrayList) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*byteArrayListView)(l))
}
