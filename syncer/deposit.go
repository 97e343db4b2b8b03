package syncer

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DepositContractAddress is the address of the kiln deposit contract.
var DepositContractAddress = common.HexToAddress("0x4242424242424242424242424242424242424242")

const (
	depositMethodName = "deposit"

	depositContractABIJSON = `[{"inputs":[],"stateMutability":"nonpayable","type":"constructor"},{"anonymous":false,"inputs":[{"indexed":false,"internalType":"bytes","name":"pubkey","type":"bytes"},{"indexed":false,"internalType":"bytes","name":"withdrawal_credentials","type":"bytes"},{"indexed":false,"internalType":"bytes","name":"amount","type":"bytes"},{"indexed":false,"internalType":"bytes","name":"signature","type":"bytes"},{"indexed":false,"internalType":"bytes","name":"index","type":"bytes"}],"name":"DepositEvent","type":"event"},{"inputs":[{"internalType":"bytes","name":"pubkey","type":"bytes"},{"internalType":"bytes","name":"withdrawal_credentials","type":"bytes"},{"internalType":"bytes","name":"signature","type":"bytes"},{"internalType":"bytes32","name":"deposit_data_root","type":"bytes32"}],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},{"inputs":[],"name":"get_deposit_count","outputs":[{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"get_deposit_root","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"bytes4","name":"interfaceId","type":"bytes4"}],"name":"supportsInterface","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"pure","type":"function"}]`
)

var depositContractABI = mustParseABI(depositContractABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// IsDepositContractCall reports whether a transaction sent to to is a call to the deposit contract.
func IsDepositContractCall(to *common.Address) bool {
	return to != nil && *to == DepositContractAddress
}

// DecodeDepositPubkey returns the validator public key of a deposit call. ok is false for any input that is
// not a well formed call to the deposit method, other calls to the contract are not deposits.
func DecodeDepositPubkey(input []byte) (pubkey []byte, ok bool) {
	if len(input) < 4 {
		return nil, false
	}
	method, err := depositContractABI.MethodById(input[:4])
	if err != nil || method.Name != depositMethodName {
		return nil, false
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil || len(args) == 0 {
		return nil, false
	}
	pubkey, ok = args[0].([]byte)
	return pubkey, ok
}
