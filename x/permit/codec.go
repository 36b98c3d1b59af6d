package permit

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type authorityDescriptorView AuthorityDescriptor

func (v *authorityDescriptorView) Reset()         { *v = authorityDescriptorView{} }
func (v *authorityDescriptorView) String() string { return proto.CompactTextString(v) }
func (*authorityDescriptorView) ProtoMessage()    {}

func (a *AuthorityDescriptor) Marshal() ([]byte, error) {
	return codec.Marshal((*authorityDescriptorView)(a))
}

func (a *AuthorityDescriptor) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*authorityDescriptorView)(a))
}

type escrowRecordView EscrowRecord

func (v *escrowRecordView) Reset()         { *v = escrowRecordView{} }
func (v *escrowRecordView) String() string { return proto.CompactTextString(v) }
func (*escrowRecordView) ProtoMessage()    {}

func (r *EscrowRecord) Marshal() ([]byte, error) {
	return codec.Marshal((*escrowRecordView)(r))
}

func (r *EscrowRecord) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*escrowRecordView)(r))
}

type initializeEscrowMsgView InitializeEscrowMsg

func (v *initializeEscrowMsgView) Reset()         { *v = initializeEscrowMsgView{} }
func (v *initializeEscrowMsgView) String() string { return proto.CompactTextString(v) }
func (*initializeEscrowMsgView) ProtoMessage()    {}

func (m *InitializeEscrowMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*initializeEscrowMsgView)(m))
}

func (m *InitializeEscrowMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*initializeEscrowMsgView)(m))
}

type relayedTransferMsgView RelayedTransferMsg

func (v *relayedTransferMsgView) Reset()         { *v = relayedTransferMsgView{} }
func (v *relayedTransferMsgView) String() string { return proto.CompactTextString(v) }
func (*relayedTransferMsgView) ProtoMessage()    {}

func (m *RelayedTransferMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*relayedTransferMsgView)(m))
}

func (m *RelayedTransferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*relayedTransferMsgView)(m))
}

type configurationView Configuration

func (v *configurationView) Reset()         { *v = configurationView{} }
func (v *configurationView) String() string { return proto.CompactTextString(v) }
func (*configurationView) ProtoMessage()    {}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal((*configurationView)(c))
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*configurationView)(c))
}
