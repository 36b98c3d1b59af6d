package gaslesstest

import "github.com/iov-one/gasless"

// Tx is a transaction mock carrying a single message.
type Tx struct {
	Msg gasless.Msg
	// Err if set is returned by GetMsg.
	Err error
}

var _ gasless.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (gasless.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg is a message mock.
type Msg struct {
	// RoutePath is returned by Path, consumed by the router.
	RoutePath string
	// Serialized represents the serialized form of this message.
	Serialized []byte
	// Err if set is returned by Marshal, Unmarshal and Validate.
	Err error
}

var _ gasless.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Validate() error {
	return m.Err
}
