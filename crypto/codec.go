package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
)

// Wire views, see package codec. The schema is in codec.proto.

type publicKeyView PublicKey

func (v *publicKeyView) Reset()         { *v = publicKeyView{} }
func (v *publicKeyView) String() string { return proto.CompactTextString(v) }
func (*publicKeyView) ProtoMessage()    {}

func (p *PublicKey) Marshal() ([]byte, error) {
	return codec.Marshal((*publicKeyView)(p))
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*publicKeyView)(p))
}
