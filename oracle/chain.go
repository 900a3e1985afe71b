package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateOracleABI is the read-only part of the pool's rate oracle contract.
const RateOracleABI = `[{"inputs":[{"internalType":"uint256","name":"from","type":"uint256"},{"internalType":"uint256","name":"to","type":"uint256"}],"name":"getRateFromTo","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

const getRateFromTo = "getRateFromTo"

// wadExp scales 1e18 fixed point values to plain numbers.
const wadExp = -18

// ContractCaller is the subset of ethclient.Client used by Chain.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Chain reads variable growth from a rate oracle contract. Timestamps are
// passed in seconds and the contract answers in wad.
type Chain struct {
	caller  ContractCaller
	address common.Address
	abi     abi.ABI
	log     zerolog.Logger
	closer  func()
}

// NewChain wraps an existing caller, typically an *ethclient.Client.
func NewChain(caller ContractCaller, address string, log zerolog.Logger) (*Chain, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("oracle: chain: invalid contract address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(RateOracleABI))
	if err != nil {
		return nil, fmt.Errorf("oracle: chain: parse abi: %w", err)
	}
	return &Chain{
		caller:  caller,
		address: common.HexToAddress(address),
		abi:     parsed,
		log:     log,
		closer:  func() {},
	}, nil
}

// DialChain connects to rpcURL and returns a Chain reading from address.
// Close releases the connection.
func DialChain(ctx context.Context, rpcURL, address string, log zerolog.Logger) (*Chain, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("oracle: chain: dial %s: %w", rpcURL, err)
	}
	c, err := NewChain(client, address, log)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.closer = client.Close
	return c, nil
}

func (c *Chain) Close() { c.closer() }

func (c *Chain) VariableGrowth(ctx context.Context, from, to int64) (float64, error) {
	if to < from {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow, from, to)
	}

	data, err := c.abi.Pack(getRateFromTo, big.NewInt(from), big.NewInt(to))
	if err != nil {
		return 0, fmt.Errorf("oracle: chain: pack: %w", err)
	}

	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("oracle: chain: call %s: %w", getRateFromTo, err)
	}

	vals, err := c.abi.Unpack(getRateFromTo, out)
	if err != nil {
		return 0, fmt.Errorf("oracle: chain: unpack: %w", err)
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("oracle: chain: expected 1 return value, got %d", len(vals))
	}
	wad, ok := vals[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("oracle: chain: unexpected return type %T", vals[0])
	}

	growth := decimal.NewFromBigInt(wad, wadExp).InexactFloat64()
	c.log.Debug().
		Str("contract", c.address.Hex()).
		Int64("from", from).
		Int64("to", to).
		Float64("growth", growth).
		Msg("rate oracle call")
	return growth, nil
}
