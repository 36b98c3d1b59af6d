package gasless

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/gasless/errors"
)

// HexBytes is a byte slice represented in JSON as an upper case hex string.
// Public keys and protocol identifiers use it.
type HexBytes []byte

func (h HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HexBytes) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "hex must be a string")
	}
	b, err := ParseHex(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

// ParseHex decodes a hex string. An optional 0x prefix is accepted.
func ParseHex(s string) (HexBytes, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
	}
	return b, nil
}
