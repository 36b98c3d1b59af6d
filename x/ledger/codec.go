package ledger

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type accountView Account

func (v *accountView) Reset()         { *v = accountView{} }
func (v *accountView) String() string { return proto.CompactTextString(v) }
func (*accountView) ProtoMessage()    {}

func (a *Account) Marshal() ([]byte, error) {
	return codec.Marshal((*accountView)(a))
}

func (a *Account) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*accountView)(a))
}

type createAccountMsgView CreateAccountMsg

func (v *createAccountMsgView) Reset()         { *v = createAccountMsgView{} }
func (v *createAccountMsgView) String() string { return proto.CompactTextString(v) }
func (*createAccountMsgView) ProtoMessage()    {}

func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*createAccountMsgView)(m))
}

func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*createAccountMsgView)(m))
}

type sendMsgView SendMsg

func (v *sendMsgView) Reset()         { *v = sendMsgView{} }
func (v *sendMsgView) String() string { return proto.CompactTextString(v) }
func (*sendMsgView) ProtoMessage()    {}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*sendMsgView)(m))
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*sendMsgView)(m))
}
