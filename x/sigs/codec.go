package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type stdSignatureView StdSignature

func (v *stdSignatureView) Reset()         { *v = stdSignatureView{} }
func (v *stdSignatureView) String() string { return proto.CompactTextString(v) }
func (*stdSignatureView) ProtoMessage()    {}

func (s *StdSignature) Marshal() ([]byte, error) {
	return codec.Marshal((*stdSignatureView)(s))
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*stdSignatureView)(s))
}

type userDataView UserData

func (v *userDataView) Reset()         { *v = userDataView{} }
func (v *userDataView) String() string { return proto.CompactTextString(v) }
func (*userDataView) ProtoMessage()    {}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.Marshal((*userDataView)(u))
}

func (u *UserData) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*userDataView)(u))
}
