/*
Package codec encodes models and messages with the reflection based
protobuf marshaler of gogo/protobuf.

Types that are stored or sent declare their fields with protobuf struct
tags. Because such a type implements Marshal itself, it cannot be handed to
proto.Marshal directly: the library would call the method back. Each package
declares an unexported view of the type instead, with the same fields and
only the proto.Message methods, and passes that view here.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/errors"
)

// Marshal encodes the view of a model.
func Marshal(view proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(view)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes raw into the view of a model. Malformed input is
// reported as ErrInput.
func Unmarshal(raw []byte, view proto.Message) error {
	if err := proto.Unmarshal(raw, view); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
