package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrMalformedAddress = errors.New("malformed address")

// ParseAddress decodes a hex account address. Mixed-case input must carry a
// valid EIP-55 checksum; all-lower or all-upper input is accepted as is.
func ParseAddress(addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrMalformedAddress, addr)
	}
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr
	}
	body := addr[2:]
	if strings.ToLower(body) != body && strings.ToUpper(body) != body {
		mixed, err := common.NewMixedcaseAddressFromString("0x" + body)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
		}
		if !mixed.ValidChecksum() {
			return common.Address{}, fmt.Errorf("%w: bad checksum %q", ErrMalformedAddress, addr)
		}
		return mixed.Address(), nil
	}
	return common.HexToAddress(body), nil
}

func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}
