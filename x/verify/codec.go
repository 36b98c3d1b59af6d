package verify

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type verifyMsgView VerifyMsg

func (v *verifyMsgView) Reset()         { *v = verifyMsgView{} }
func (v *verifyMsgView) String() string { return proto.CompactTextString(v) }
func (*verifyMsgView) ProtoMessage()    {}

func (m *VerifyMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*verifyMsgView)(m))
}

func (m *VerifyMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*verifyMsgView)(m))
}
